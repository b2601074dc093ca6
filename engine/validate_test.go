package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duclair/tontine-go/models"
)

func validSavings() *models.Tontine {
	end := testStart.AddDate(0, 6, 0)
	return &models.Tontine{
		Name:            "Epargne scolaire",
		Type:            models.TypeSavings,
		Amount:          10000,
		Frequency:       models.FrequencyMonthly,
		StartDate:       testStart,
		EndDate:         &end,
		CollectWindow:   &models.CollectWindow{StartDay: 1, EndDay: 10},
		MaxParticipants: 12,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Tontine)
		wantErr string // offending field, empty means valid
	}{
		{"valid savings", func(t *models.Tontine) {}, ""},
		{"missing name", func(t *models.Tontine) { t.Name = "" }, "name"},
		{"zero amount", func(t *models.Tontine) { t.Amount = 0 }, "amount"},
		{"negative amount", func(t *models.Tontine) { t.Amount = -500 }, "amount"},
		{"bad type", func(t *models.Tontine) { t.Type = "rotating" }, "type"},
		{"missing start date", func(t *models.Tontine) { t.StartDate = time.Time{} }, "start_date"},
		{"custom without days", func(t *models.Tontine) { t.Frequency = models.FrequencyCustom }, "custom_days"},
		{"bad frequency", func(t *models.Tontine) { t.Frequency = "hourly" }, "frequency"},
		{"bad payment day", func(t *models.Tontine) { pd := models.PaymentDay("payday"); t.PaymentDay = &pd }, "payment_day"},
		{"cap below two", func(t *models.Tontine) { t.MaxParticipants = 1 }, "max_participants"},
		{"savings without end date", func(t *models.Tontine) { t.EndDate = nil }, "end_date"},
		{"end before start", func(t *models.Tontine) { d := t.StartDate.AddDate(0, 0, -1); t.EndDate = &d }, "end_date"},
		{"savings without window", func(t *models.Tontine) { t.CollectWindow = nil }, "collect_window"},
		{"window start after end", func(t *models.Tontine) { t.CollectWindow = &models.CollectWindow{StartDay: 20, EndDay: 10} }, "collect_window"},
		{"window out of month", func(t *models.Tontine) { t.CollectWindow = &models.CollectWindow{StartDay: 1, EndDay: 32} }, "collect_window"},
		{"pack without description", func(t *models.Tontine) { t.GainType = models.GainPack }, "pack_description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tn := validSavings()
			tt.mutate(tn)
			err := ValidateConfig(tn)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, IsValidation(err))
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.wantErr, e.Field)
		})
	}
}

func TestValidateConfigTraditionalUnlimited(t *testing.T) {
	tn := &models.Tontine{
		Name:                  "Njangui",
		Type:                  models.TypeTraditional,
		Amount:                5000,
		Frequency:             models.FrequencyWeekly,
		StartDate:             testStart,
		UnlimitedParticipants: true,
	}
	require.NoError(t, ValidateConfig(tn))
}
