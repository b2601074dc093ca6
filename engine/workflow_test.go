package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duclair/tontine-go/models"
)

var (
	participantActor = Actor{ID: "u1", Name: "Awa Mbarga"}
	initiatorActor   = Actor{ID: "u9", Name: "Duclair Fopa"}
)

func TestMarkPaidThenValidate(t *testing.T) {
	tn := activeTontine(2)

	// before anything: derived status is pending
	assert.Equal(t, models.PaymentPending, PaymentStatusAt(tn, tn.ParticipantByID("p1"), testStart))

	afterMark, err := MarkPaid(tn, "p1", participantActor, "", testNow)
	require.NoError(t, err)

	payment := afterMark.ParticipantByID("p1").PaymentForCycle(1)
	require.NotNil(t, payment)
	assert.Equal(t, models.PaymentParticipantPaid, payment.Status)
	assert.True(t, payment.ParticipantValidated)
	require.NotNil(t, payment.ParticipantValidatedAt)
	assert.Equal(t, testNow, *payment.ParticipantValidatedAt)
	assert.False(t, payment.InitiatorValidated)
	assert.Equal(t, int64(5000), payment.Amount)
	assert.Equal(t, testStart.AddDate(0, 0, 1), payment.DueDate)

	require.Len(t, payment.AuditLog, 1)
	assert.Equal(t, models.AuditParticipantMarkedPaid, payment.AuditLog[0].Action)
	assert.Equal(t, "u1", payment.AuditLog[0].UserID)

	later := testNow.Add(2 * time.Hour)
	afterValidate, err := ValidatePayment(afterMark, "p1", initiatorActor, later)
	require.NoError(t, err)

	payment = afterValidate.ParticipantByID("p1").PaymentForCycle(1)
	assert.Equal(t, models.PaymentConfirmed, payment.Status)
	assert.True(t, payment.InitiatorValidated)
	require.NotNil(t, payment.InitiatorValidatedAt)
	assert.Equal(t, later, *payment.InitiatorValidatedAt)

	// audit trail keeps causal order and never loses entries
	require.Len(t, payment.AuditLog, 2)
	assert.Equal(t, models.AuditParticipantMarkedPaid, payment.AuditLog[0].Action)
	assert.Equal(t, models.AuditInitiatorValidated, payment.AuditLog[1].Action)
	assert.True(t, payment.AuditLog[1].Timestamp.After(payment.AuditLog[0].Timestamp))

	// the input aggregates were never touched
	assert.Nil(t, tn.ParticipantByID("p1").PaymentForCycle(1))
	assert.Equal(t, models.PaymentParticipantPaid, afterMark.ParticipantByID("p1").PaymentForCycle(1).Status)
}

func TestMarkPaidTwiceIsNoOp(t *testing.T) {
	tn := activeTontine(2)

	once, err := MarkPaid(tn, "p1", participantActor, "", testNow)
	require.NoError(t, err)
	twice, err := MarkPaid(once, "p1", participantActor, "", testNow.Add(time.Hour))
	require.NoError(t, err)

	// at most one payment per (participant, cycle)
	require.Len(t, twice.ParticipantByID("p1").PaymentHistory, 1)
	assert.Equal(t, once.ParticipantByID("p1").PaymentForCycle(1).ID,
		twice.ParticipantByID("p1").PaymentForCycle(1).ID)
}

func TestValidateBeforeMarkPaidRejected(t *testing.T) {
	tn := activeTontine(2)

	_, err := ValidatePayment(tn, "p1", initiatorActor, testNow)
	require.Error(t, err)
	assert.True(t, IsState(err))

	// state unchanged: still no payment, derived status still pending
	assert.Nil(t, tn.ParticipantByID("p1").PaymentForCycle(1))
	assert.Equal(t, models.PaymentPending, PaymentStatusAt(tn, tn.ParticipantByID("p1"), testStart))
}

func TestValidateConfirmedIsNoOp(t *testing.T) {
	tn := activeTontine(3)

	tn, err := MarkPaid(tn, "p1", participantActor, "", testNow)
	require.NoError(t, err)
	tn, err = ValidatePayment(tn, "p1", initiatorActor, testNow)
	require.NoError(t, err)

	again, err := ValidatePayment(tn, "p1", initiatorActor, testNow.Add(time.Hour))
	require.NoError(t, err)

	payment := again.ParticipantByID("p1").PaymentForCycle(1)
	assert.Equal(t, models.PaymentConfirmed, payment.Status)
	require.Len(t, payment.AuditLog, 2) // no duplicate audit entry
	assert.Equal(t, *tn.ParticipantByID("p1").PaymentForCycle(1).InitiatorValidatedAt, *payment.InitiatorValidatedAt)
}

func TestPaymentsRejectedWhileSuspended(t *testing.T) {
	tn := activeTontine(2)
	suspended, err := ToggleSuspension(tn, testNow)
	require.NoError(t, err)

	_, err = MarkPaid(suspended, "p1", participantActor, "", testNow)
	require.Error(t, err)
	assert.True(t, IsState(err))

	_, err = ValidatePayment(suspended, "p1", initiatorActor, testNow)
	require.Error(t, err)
	assert.True(t, IsState(err))

	// resume and the same command goes through
	resumed, err := ToggleSuspension(suspended, testNow)
	require.NoError(t, err)
	out, err := MarkPaid(resumed, "p1", participantActor, "", testNow)
	require.NoError(t, err)
	assert.NotNil(t, out.ParticipantByID("p1").PaymentForCycle(1))
}

func TestMarkPaidUnknownParticipant(t *testing.T) {
	tn := activeTontine(2)
	_, err := MarkPaid(tn, "ghost", participantActor, "", testNow)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestMarkPaidKeepsReceipt(t *testing.T) {
	tn := activeTontine(2)
	out, err := MarkPaid(tn, "p1", participantActor, "https://res.cloudinary.com/demo/receipts/abc.jpg", testNow)
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/receipts/abc.jpg", out.ParticipantByID("p1").PaymentForCycle(1).ReceiptURL)
}

func TestPaymentStatusAtDerivesOverdue(t *testing.T) {
	tn := activeTontine(2) // daily, cycle 1 due 2024-01-02
	p := tn.ParticipantByID("p1")

	beforeDue := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	afterDue := time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, models.PaymentPending, PaymentStatusAt(tn, p, beforeDue))
	assert.Equal(t, models.PaymentOverdue, PaymentStatusAt(tn, p, afterDue))

	// the instant a payment row exists, overdue is superseded
	paid, err := MarkPaid(tn, "p1", participantActor, "", afterDue)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentParticipantPaid, PaymentStatusAt(paid, paid.ParticipantByID("p1"), afterDue.Add(time.Hour)))
}
