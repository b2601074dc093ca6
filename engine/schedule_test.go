package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duclair/tontine-go/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name       string
		freq       models.Frequency
		customDays int
		cycle      int
		paymentDay *models.PaymentDay
		want       time.Time
	}{
		{"daily cycle 5", models.FrequencyDaily, 0, 5, nil, date(2024, time.January, 6)},
		{"daily cycle 1", models.FrequencyDaily, 0, 1, nil, date(2024, time.January, 2)},
		{"weekly cycle 2", models.FrequencyWeekly, 0, 2, nil, date(2024, time.January, 15)},
		// 2024-01-08 is a Monday; friday alignment moves forward 4 days
		{"weekly aligned to friday", models.FrequencyWeekly, 0, 1, day(models.DayFriday), date(2024, time.January, 12)},
		// already on the target weekday: no move, never backward
		{"weekly aligned to monday", models.FrequencyWeekly, 0, 1, day(models.DayMonday), date(2024, time.January, 8)},
		{"monthly cycle 2", models.FrequencyMonthly, 0, 2, nil, date(2024, time.March, 1)},
		{"custom 14 days cycle 3", models.FrequencyCustom, 14, 3, nil, date(2024, time.February, 12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDueDate(testStart, tt.freq, tt.customDays, tt.cycle, tt.paymentDay)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextDueDateMonthlyWeekdayAlignment(t *testing.T) {
	// Monthly alignment resets to the first occurrence of the weekday in
	// the target month; the start day-of-month is not preserved.
	start := date(2024, time.January, 15)
	got, err := NextDueDate(start, models.FrequencyMonthly, 0, 1, day(models.DayFriday))
	require.NoError(t, err)
	// February 2024 opens on a Thursday, so the first Friday is the 2nd.
	assert.Equal(t, date(2024, time.February, 2), got)
}

func TestNextDueDateCustomRequiresDays(t *testing.T) {
	_, err := NextDueDate(testStart, models.FrequencyCustom, 0, 1, nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestNextDueDateUnknownFrequency(t *testing.T) {
	_, err := NextDueDate(testStart, models.Frequency("fortnightly"), 0, 1, nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestNextDueDateDeterministic(t *testing.T) {
	a, err := NextDueDate(testStart, models.FrequencyWeekly, 0, 4, day(models.DayWednesday))
	require.NoError(t, err)
	b, err := NextDueDate(testStart, models.FrequencyWeekly, 0, 4, day(models.DayWednesday))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestInCollectWindow(t *testing.T) {
	tn := &models.Tontine{CollectWindow: &models.CollectWindow{StartDay: 5, EndDay: 10}}
	assert.False(t, InCollectWindow(tn, date(2024, time.January, 4)))
	assert.True(t, InCollectWindow(tn, date(2024, time.January, 5)))
	assert.True(t, InCollectWindow(tn, date(2024, time.January, 10)))
	assert.False(t, InCollectWindow(tn, date(2024, time.January, 11)))

	// no window: any day collects
	assert.True(t, InCollectWindow(&models.Tontine{}, date(2024, time.January, 25)))
}
