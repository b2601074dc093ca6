package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/duclair/tontine-go/models"
)

// Every command in this package is copy-on-write: the input aggregate is
// never modified, the returned aggregate is a new version. On error the
// returned aggregate is nil and the input is guaranteed untouched.

// AddParticipant appends a participant at position N+1. Only legal while
// the tontine is a draft; order is fixed after activation.
func AddParticipant(t *models.Tontine, p models.Participant, now time.Time) (*models.Tontine, error) {
	if t.Status != models.StatusDraft {
		return nil, stateErr("participants can only be added to a draft tontine, not " + string(t.Status))
	}
	if !t.UnlimitedParticipants && len(t.Participants) >= t.MaxParticipants {
		return nil, capacityErr(fmt.Sprintf("tontine is full (%d participants max)", t.MaxParticipants))
	}
	if p.ID == "" {
		return nil, validationErr("id", "participant id is required")
	}
	if t.ParticipantByID(p.ID) != nil {
		return nil, validationErr("id", "participant "+p.ID+" already belongs to this tontine")
	}

	out := t.Clone()
	p.Position = len(out.Participants) + 1
	p.HasReceivedPayout = false
	p.PaymentHistory = []models.Payment{}
	if p.AddedAt.IsZero() {
		p.AddedAt = now
	}
	out.Participants = append(out.Participants, p)
	out.UpdatedAt = now
	return out, nil
}

// RemoveParticipant removes by id and re-packs the remaining positions to a
// dense 1..N-1 run, keeping relative order.
func RemoveParticipant(t *models.Tontine, participantID string, now time.Time) (*models.Tontine, error) {
	if t.ParticipantByID(participantID) == nil {
		return nil, validationErr("participant_id", "participant "+participantID+" not found")
	}

	out := t.Clone()
	kept := out.Participants[:0]
	for _, p := range out.Participants {
		if p.ID != participantID {
			kept = append(kept, p)
		}
	}
	out.Participants = kept
	renumber(out.Participants)
	out.UpdatedAt = now
	return out, nil
}

// ReorderParticipants replaces the order wholesale. The caller must list
// every participant exactly once; positions are reassigned by index.
func ReorderParticipants(t *models.Tontine, orderedIDs []string, now time.Time) (*models.Tontine, error) {
	if len(orderedIDs) != len(t.Participants) {
		return nil, validationErr("order", fmt.Sprintf("order lists %d participants, tontine has %d", len(orderedIDs), len(t.Participants)))
	}
	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if t.ParticipantByID(id) == nil {
			return nil, validationErr("order", "unknown participant "+id)
		}
		if seen[id] {
			return nil, validationErr("order", "participant "+id+" listed twice")
		}
		seen[id] = true
	}

	out := t.Clone()
	byID := make(map[string]models.Participant, len(out.Participants))
	for _, p := range out.Participants {
		byID[p.ID] = p
	}
	for i, id := range orderedIDs {
		p := byID[id]
		p.Position = i + 1
		out.Participants[i] = p
	}
	out.UpdatedAt = now
	return out, nil
}

// RandomizeOrder shuffles the participants with Fisher-Yates, so each of
// the N! orderings is equally likely, then renumbers 1..N. The rand source
// is injected so callers can pin the permutation in tests.
func RandomizeOrder(t *models.Tontine, rng *rand.Rand, now time.Time) (*models.Tontine, error) {
	out := t.Clone()
	ps := out.Participants
	for i := len(ps) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		ps[i], ps[j] = ps[j], ps[i]
	}
	renumber(ps)
	out.UpdatedAt = now
	return out, nil
}

func renumber(ps []models.Participant) {
	for i := range ps {
		ps[i].Position = i + 1
	}
}
