package engine

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/duclair/tontine-go/models"
)

// Actor identifies who is executing a command, for the payment audit trail.
// Authorization (is this really the participant / the initiator) happens at
// the API boundary before the command is invoked.
type Actor struct {
	ID   string
	Name string
}

// MarkPaid records that a participant declared the current cycle's
// contribution paid. Creates the cycle's Payment in participant_paid with
// the due date from the schedule calculator. A second call for the same
// cycle is a no-op: the record already exists, the aggregate is returned
// unchanged.
func MarkPaid(t *models.Tontine, participantID string, actor Actor, receiptURL string, now time.Time) (*models.Tontine, error) {
	if t.Status != models.StatusActive {
		return nil, stateErr("payments are only accepted on an active tontine, not " + string(t.Status))
	}
	p := t.ParticipantByID(participantID)
	if p == nil {
		return nil, validationErr("participant_id", "participant "+participantID+" not found")
	}
	if p.PaymentForCycle(t.CurrentCycle) != nil {
		// At most one payment per (participant, cycle): already marked.
		return t.Clone(), nil
	}

	due, err := DueDateForCycle(t, t.CurrentCycle)
	if err != nil {
		return nil, err
	}

	out := t.Clone()
	target := out.ParticipantByID(participantID)
	paid := now
	payment := models.Payment{
		ID:                     uuid.NewString(),
		ParticipantID:          participantID,
		Cycle:                  out.CurrentCycle,
		Amount:                 out.Amount,
		DueDate:                due,
		PaidDate:               &paid,
		ReceiptURL:             receiptURL,
		Status:                 models.PaymentParticipantPaid,
		ParticipantValidated:   true,
		ParticipantValidatedAt: &paid,
		AuditLog: []models.PaymentAudit{{
			ID:        uuid.NewString(),
			Action:    models.AuditParticipantMarkedPaid,
			UserID:    actor.ID,
			UserName:  actor.Name,
			Timestamp: now,
			Notes:     "participant marked the payment as made",
		}},
	}
	target.PaymentHistory = append(target.PaymentHistory, payment)
	out.UpdatedAt = now
	return out, nil
}

// ValidatePayment is the initiator's half of the two-party confirmation:
// participant_paid becomes confirmed. Validating an already-confirmed
// payment is a no-op; validating a cycle with no payment yet is rejected,
// there is nothing to confirm.
//
// When the confirmation settles the last outstanding payment of the cycle,
// the cycle advances (see advanceCycle).
func ValidatePayment(t *models.Tontine, participantID string, actor Actor, now time.Time) (*models.Tontine, error) {
	if t.Status != models.StatusActive {
		return nil, stateErr("payments are only validated on an active tontine, not " + string(t.Status))
	}
	p := t.ParticipantByID(participantID)
	if p == nil {
		return nil, validationErr("participant_id", "participant "+participantID+" not found")
	}
	payment := p.PaymentForCycle(t.CurrentCycle)
	if payment == nil {
		return nil, stateErr("no payment to validate: participant has not marked cycle " + strconv.Itoa(t.CurrentCycle) + " as paid")
	}
	if payment.Status == models.PaymentConfirmed {
		return t.Clone(), nil
	}
	if payment.Status != models.PaymentParticipantPaid {
		return nil, stateErr("payment in status " + string(payment.Status) + " cannot be validated")
	}

	out := t.Clone()
	target := out.ParticipantByID(participantID).PaymentForCycle(out.CurrentCycle)
	at := now
	target.Status = models.PaymentConfirmed
	target.InitiatorValidated = true
	target.InitiatorValidatedAt = &at
	target.AuditLog = append(target.AuditLog, models.PaymentAudit{
		ID:        uuid.NewString(),
		Action:    models.AuditInitiatorValidated,
		UserID:    actor.ID,
		UserName:  actor.Name,
		Timestamp: now,
		Notes:     "payment validated by initiator",
	})
	out.UpdatedAt = now

	advanceCycle(out, now)
	return out, nil
}

// PaymentStatusAt derives the participant's status for the tontine's
// current cycle. Overdue is never stored: it is recomputed on every read
// and disappears the instant a payment record exists.
func PaymentStatusAt(t *models.Tontine, p *models.Participant, now time.Time) models.PaymentStatus {
	if payment := p.PaymentForCycle(t.CurrentCycle); payment != nil {
		return payment.Status
	}
	due, err := DueDateForCycle(t, t.CurrentCycle)
	if err == nil && now.After(due) {
		return models.PaymentOverdue
	}
	return models.PaymentPending
}
