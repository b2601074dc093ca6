package engine

import (
	"time"

	"github.com/duclair/tontine-go/models"
)

// NextDueDate computes the contribution due date for a cycle from the
// tontine's frequency configuration. Pure: same inputs, same output.
//
// Alignment rules:
//   - weekly with a payment day advances forward (never backward) to the
//     next occurrence of that weekday;
//   - monthly with a payment day lands on the first occurrence of that
//     weekday in the target month, discarding the start day-of-month.
func NextDueDate(start time.Time, freq models.Frequency, customDays, cycle int, paymentDay *models.PaymentDay) (time.Time, error) {
	switch freq {
	case models.FrequencyDaily:
		return start.AddDate(0, 0, cycle), nil

	case models.FrequencyWeekly:
		due := start.AddDate(0, 0, cycle*7)
		if paymentDay != nil {
			target := paymentDay.Weekday()
			shift := (int(target) - int(due.Weekday()) + 7) % 7
			due = due.AddDate(0, 0, shift)
		}
		return due, nil

	case models.FrequencyMonthly:
		due := start.AddDate(0, cycle, 0)
		if paymentDay != nil {
			target := paymentDay.Weekday()
			first := time.Date(due.Year(), due.Month(), 1, due.Hour(), due.Minute(), due.Second(), due.Nanosecond(), due.Location())
			shift := (int(target) - int(first.Weekday()) + 7) % 7
			due = first.AddDate(0, 0, shift)
		}
		return due, nil

	case models.FrequencyCustom:
		if customDays < 1 {
			return time.Time{}, validationErr("custom_days", "custom frequency requires custom_days >= 1")
		}
		return start.AddDate(0, 0, cycle*customDays), nil
	}

	return time.Time{}, validationErr("frequency", "unknown frequency "+string(freq))
}

// DueDateForCycle is NextDueDate fed from the aggregate's own config.
func DueDateForCycle(t *models.Tontine, cycle int) (time.Time, error) {
	return NextDueDate(t.StartDate, t.Frequency, t.CustomDays, cycle, t.PaymentDay)
}

// InCollectWindow reports whether the date falls inside the tontine's
// day-of-month collect window. Tontines without a window accept any day.
func InCollectWindow(t *models.Tontine, date time.Time) bool {
	if t.CollectWindow == nil {
		return true
	}
	day := date.Day()
	return day >= t.CollectWindow.StartDay && day <= t.CollectWindow.EndDay
}
