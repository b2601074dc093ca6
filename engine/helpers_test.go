package engine

import (
	"fmt"
	"time"

	"github.com/duclair/tontine-go/models"
)

var (
	testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // a Monday
	testNow   = time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
)

func day(pd models.PaymentDay) *models.PaymentDay { return &pd }

// newTontine builds a draft traditional tontine with n participants.
func newTontine(n int) *models.Tontine {
	t := &models.Tontine{
		Name:                  "Tontine du quartier",
		Type:                  models.TypeTraditional,
		Amount:                5000,
		Frequency:             models.FrequencyDaily,
		StartDate:             testStart,
		UnlimitedParticipants: true,
		Status:                models.StatusDraft,
		OrderType:             models.OrderManual,
		GainType:              models.GainMoney,
		InviteCode:            "AB12CD",
		CreatedAt:             testStart,
		UpdatedAt:             testStart,
	}
	for i := 1; i <= n; i++ {
		t.Participants = append(t.Participants, models.Participant{
			ID:             fmt.Sprintf("p%d", i),
			FirstName:      fmt.Sprintf("Membre%d", i),
			LastName:       "Test",
			Email:          fmt.Sprintf("membre%d@example.com", i),
			Position:       i,
			PaymentHistory: []models.Payment{},
			AddedBy:        "manual",
			AddedAt:        testStart,
		})
	}
	return t
}

// activeTontine is newTontine already started on cycle 1.
func activeTontine(n int) *models.Tontine {
	t := newTontine(n)
	t.Status = models.StatusActive
	t.CurrentCycle = 1
	return t
}

func positions(t *models.Tontine) []int {
	out := make([]int, len(t.Participants))
	for i, p := range t.Participants {
		out[i] = p.Position
	}
	return out
}
