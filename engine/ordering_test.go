package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duclair/tontine-go/models"
)

func newMember(id string) models.Participant {
	return models.Participant{
		ID:        id,
		FirstName: id,
		LastName:  "Test",
		Email:     id + "@example.com",
		AddedBy:   "manual",
	}
}

// requireDensePositions asserts positions are exactly the set {1..N}.
func requireDensePositions(t *testing.T, tn *models.Tontine) {
	t.Helper()
	got := positions(tn)
	sort.Ints(got)
	for i, pos := range got {
		require.Equal(t, i+1, pos, "positions must be a contiguous 1..N run, got %v", positions(tn))
	}
}

func TestAddParticipantAppendsAtEnd(t *testing.T) {
	tn := newTontine(2)
	out, err := AddParticipant(tn, newMember("p3"), testNow)
	require.NoError(t, err)

	require.Len(t, out.Participants, 3)
	assert.Equal(t, 3, out.Participants[2].Position)
	requireDensePositions(t, out)

	// copy-on-write: the input aggregate is untouched
	assert.Len(t, tn.Participants, 2)
}

func TestAddParticipantCapacity(t *testing.T) {
	tn := newTontine(2)
	tn.UnlimitedParticipants = false
	tn.MaxParticipants = 2

	_, err := AddParticipant(tn, newMember("p3"), testNow)
	require.Error(t, err)
	assert.True(t, IsCapacity(err))
}

func TestAddParticipantOnlyInDraft(t *testing.T) {
	for _, status := range []models.TontineStatus{models.StatusActive, models.StatusSuspended, models.StatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			tn := newTontine(2)
			tn.Status = status
			_, err := AddParticipant(tn, newMember("p3"), testNow)
			require.Error(t, err)
			assert.True(t, IsState(err))
		})
	}
}

func TestAddParticipantRejectsDuplicate(t *testing.T) {
	tn := newTontine(2)
	_, err := AddParticipant(tn, newMember("p1"), testNow)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestRemoveParticipantRepacksPositions(t *testing.T) {
	tn := newTontine(4)
	out, err := RemoveParticipant(tn, "p2", testNow)
	require.NoError(t, err)

	require.Len(t, out.Participants, 3)
	requireDensePositions(t, out)
	// relative order preserved: p1, p3, p4
	assert.Equal(t, []string{"p1", "p3", "p4"}, memberIDs(out))
	assert.Nil(t, out.ParticipantByID("p2"))
}

func TestRemoveParticipantUnknown(t *testing.T) {
	tn := newTontine(2)
	_, err := RemoveParticipant(tn, "ghost", testNow)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestPositionsStayDenseUnderChurn(t *testing.T) {
	// Any sequence of adds and removes must leave positions as exactly
	// {1..N} with no duplicates or gaps.
	rng := rand.New(rand.NewSource(7))
	tn := newTontine(0)
	next := 0

	for step := 0; step < 200; step++ {
		if len(tn.Participants) == 0 || rng.Intn(2) == 0 {
			next++
			out, err := AddParticipant(tn, newMember(fmt.Sprintf("m%d", next)), testNow)
			require.NoError(t, err)
			tn = out
		} else {
			victim := tn.Participants[rng.Intn(len(tn.Participants))].ID
			out, err := RemoveParticipant(tn, victim, testNow)
			require.NoError(t, err)
			tn = out
		}
		requireDensePositions(t, tn)
	}
}

func TestReorderParticipants(t *testing.T) {
	tn := newTontine(3)
	out, err := ReorderParticipants(tn, []string{"p3", "p1", "p2"}, testNow)
	require.NoError(t, err)

	assert.Equal(t, []string{"p3", "p1", "p2"}, memberIDs(out))
	assert.Equal(t, []int{1, 2, 3}, positions(out))
}

func TestReorderParticipantsRejections(t *testing.T) {
	tests := []struct {
		name  string
		order []string
	}{
		{"missing participant", []string{"p1", "p2"}},
		{"duplicate participant", []string{"p1", "p2", "p2"}},
		{"unknown participant", []string{"p1", "p2", "ghost"}},
		{"too many", []string{"p1", "p2", "p3", "p1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tn := newTontine(3)
			_, err := ReorderParticipants(tn, tt.order, testNow)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestRandomizeOrderIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tn := newTontine(5)
	out, err := RandomizeOrder(tn, rng, testNow)
	require.NoError(t, err)

	require.Len(t, out.Participants, 5)
	requireDensePositions(t, out)

	// same members, input untouched
	want := memberIDs(tn)
	got := append([]string(nil), memberIDs(out)...)
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5"}, memberIDs(tn))
}

func TestRandomizeOrderUniformity(t *testing.T) {
	// Fisher-Yates over 3 members: each of the 6 orderings should show up
	// about trials/6 times. Loose bounds, this is a sanity check on the
	// shuffle being unbiased, not an exact distribution test.
	const trials = 6000
	rng := rand.New(rand.NewSource(1))
	tn := newTontine(3)

	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		out, err := RandomizeOrder(tn, rng, testNow)
		require.NoError(t, err)
		counts[strings.Join(memberIDs(out), ",")]++
	}

	require.Len(t, counts, 6)
	for perm, n := range counts {
		assert.InDelta(t, trials/6, n, 150, "permutation %s came up %d times", perm, n)
	}
}

func memberIDs(t *models.Tontine) []string {
	out := make([]string, len(t.Participants))
	for i, p := range t.Participants {
		out[i] = p.ID
	}
	return out
}
