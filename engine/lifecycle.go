package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/duclair/tontine-go/models"
)

// Start activates a draft tontine. At least two participants are required.
// Traditional tontines with random ordering get their one-time shuffle here,
// before the first cycle opens; activation freezes the order.
func Start(t *models.Tontine, rng *rand.Rand, now time.Time) (*models.Tontine, error) {
	if t.Status != models.StatusDraft {
		return nil, stateErr("only a draft tontine can be started, not " + string(t.Status))
	}
	if len(t.Participants) < 2 {
		return nil, stateErr(fmt.Sprintf("at least 2 participants are required to start, have %d", len(t.Participants)))
	}

	out := t.Clone()
	if out.Type == models.TypeTraditional && out.OrderType == models.OrderRandom {
		ps := out.Participants
		for i := len(ps) - 1; i > 0; i-- {
			j := rng.Intn(i + 1)
			ps[i], ps[j] = ps[j], ps[i]
		}
		renumber(ps)
	}
	out.CurrentCycle = 1
	out.Status = models.StatusActive
	out.UpdatedAt = now
	return out, nil
}

// ToggleSuspension flips active <-> suspended. Nothing else moves: the
// cycle, positions and payment history all survive a suspension intact,
// and resuming picks up at the same cycle.
func ToggleSuspension(t *models.Tontine, now time.Time) (*models.Tontine, error) {
	out := t.Clone()
	switch t.Status {
	case models.StatusActive:
		out.Status = models.StatusSuspended
	case models.StatusSuspended:
		out.Status = models.StatusActive
	default:
		return nil, stateErr("only an active or suspended tontine can be toggled, not " + string(t.Status))
	}
	out.UpdatedAt = now
	return out, nil
}

// advanceCycle moves to the next cycle once every participant's payment for
// the current cycle is confirmed. Called on an aggregate already cloned by
// the surrounding command, so it mutates in place.
//
// On advancing, the completed cycle's beneficiary (traditional: position ==
// cycle) is flagged as having received the payout. The tontine completes
// when the next cycle would exceed the participant count (traditional) or
// fall past the end date (savings).
func advanceCycle(t *models.Tontine, now time.Time) {
	for i := range t.Participants {
		payment := t.Participants[i].PaymentForCycle(t.CurrentCycle)
		if payment == nil || payment.Status != models.PaymentConfirmed {
			return
		}
	}

	if t.Type == models.TypeTraditional {
		if b := t.CurrentBeneficiary(); b != nil {
			b.HasReceivedPayout = true
		}
		if t.CurrentCycle+1 > len(t.Participants) {
			t.Status = models.StatusCompleted
			t.UpdatedAt = now
			return
		}
	}

	if t.Type == models.TypeSavings && t.EndDate != nil {
		due, err := DueDateForCycle(t, t.CurrentCycle+1)
		if err == nil && due.After(*t.EndDate) {
			t.Status = models.StatusCompleted
			t.UpdatedAt = now
			return
		}
	}

	t.CurrentCycle++
	t.UpdatedAt = now
}
