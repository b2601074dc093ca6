package engine

import (
	"github.com/duclair/tontine-go/models"
)

// ValidateConfig checks the creation-time rules for a tontine. All checks
// run before any state exists, so a failure here never leaves anything to
// roll back.
func ValidateConfig(t *models.Tontine) error {
	if t.Name == "" {
		return validationErr("name", "name is required")
	}
	if t.Amount <= 0 {
		return validationErr("amount", "amount must be greater than 0")
	}
	if t.Type != models.TypeTraditional && t.Type != models.TypeSavings {
		return validationErr("type", "type must be traditional or savings")
	}
	if t.StartDate.IsZero() {
		return validationErr("start_date", "start date is required")
	}

	switch t.Frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly:
	case models.FrequencyCustom:
		if t.CustomDays < 1 {
			return validationErr("custom_days", "custom frequency requires custom_days >= 1")
		}
	default:
		return validationErr("frequency", "frequency must be daily, weekly, monthly or custom")
	}

	if t.PaymentDay != nil && !t.PaymentDay.Valid() {
		return validationErr("payment_day", "unknown payment day "+string(*t.PaymentDay))
	}

	if !t.UnlimitedParticipants && t.MaxParticipants < 2 {
		return validationErr("max_participants", "at least 2 participants are required")
	}

	if t.Type == models.TypeSavings {
		if t.EndDate == nil {
			return validationErr("end_date", "end date is required for a savings tontine")
		}
		if !t.EndDate.After(t.StartDate) {
			return validationErr("end_date", "end date must be after the start date")
		}
		if t.CollectWindow == nil {
			return validationErr("collect_window", "collect window is required for a savings tontine")
		}
		w := t.CollectWindow
		if w.StartDay < 1 || w.EndDay > 31 || w.StartDay >= w.EndDay {
			return validationErr("collect_window", "collect window must satisfy 1 <= start_day < end_day <= 31")
		}
	}

	if t.GainType == models.GainPack && t.PackDescription == "" {
		return validationErr("pack_description", "pack description is required for a pack tontine")
	}

	return nil
}
