package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TontineType string

const (
	TypeTraditional TontineType = "traditional"
	TypeSavings     TontineType = "savings"
)

type TontineStatus string

const (
	StatusDraft     TontineStatus = "draft"
	StatusActive    TontineStatus = "active"
	StatusSuspended TontineStatus = "suspended"
	StatusPaused    TontineStatus = "paused" // reserved, no transition reaches it
	StatusCompleted TontineStatus = "completed"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyCustom  Frequency = "custom"
)

type OrderType string

const (
	OrderManual OrderType = "manual"
	OrderRandom OrderType = "random"
)

type GainType string

const (
	GainMoney GainType = "money"
	GainPack  GainType = "pack"
)

// PaymentDay is a named weekday used to align weekly/monthly schedules.
type PaymentDay string

const (
	DaySunday    PaymentDay = "sunday"
	DayMonday    PaymentDay = "monday"
	DayTuesday   PaymentDay = "tuesday"
	DayWednesday PaymentDay = "wednesday"
	DayThursday  PaymentDay = "thursday"
	DayFriday    PaymentDay = "friday"
	DaySaturday  PaymentDay = "saturday"
)

var paymentDays = map[PaymentDay]time.Weekday{
	DaySunday:    time.Sunday,
	DayMonday:    time.Monday,
	DayTuesday:   time.Tuesday,
	DayWednesday: time.Wednesday,
	DayThursday:  time.Thursday,
	DayFriday:    time.Friday,
	DaySaturday:  time.Saturday,
}

// Weekday maps the named day to time.Weekday. Unknown names fall back to
// Monday, matching the lenient handling the mobile clients rely on.
func (d PaymentDay) Weekday() time.Weekday {
	if wd, ok := paymentDays[d]; ok {
		return wd
	}
	return time.Monday
}

func (d PaymentDay) Valid() bool {
	_, ok := paymentDays[d]
	return ok
}

// CollectWindow is the day-of-month range contributions are expected in
// (savings tontines only).
type CollectWindow struct {
	StartDay int `bson:"start_day" json:"start_day"`
	EndDay   int `bson:"end_day" json:"end_day"`
}

// Tontine is the aggregate root. Participants and their payment history are
// embedded so the whole record is read and replaced as one document.
type Tontine struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InitiatorID primitive.ObjectID `bson:"initiator_id" json:"initiator_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Type        TontineType        `bson:"type" json:"type"`

	// Amount is the per-cycle contribution in integer minor units.
	Amount   int64  `bson:"amount" json:"amount"`
	Currency string `bson:"currency,omitempty" json:"currency,omitempty"`

	Frequency  Frequency   `bson:"frequency" json:"frequency"`
	CustomDays int         `bson:"custom_days,omitempty" json:"custom_days,omitempty"`
	PaymentDay *PaymentDay `bson:"payment_day,omitempty" json:"payment_day,omitempty"`

	StartDate     time.Time      `bson:"start_date" json:"start_date"`
	EndDate       *time.Time     `bson:"end_date,omitempty" json:"end_date,omitempty"`
	CollectWindow *CollectWindow `bson:"collect_window,omitempty" json:"collect_window,omitempty"`

	MaxParticipants       int  `bson:"max_participants,omitempty" json:"max_participants,omitempty"`
	UnlimitedParticipants bool `bson:"unlimited_participants" json:"unlimited_participants"`

	CurrentCycle int           `bson:"current_cycle" json:"current_cycle"`
	Status       TontineStatus `bson:"status" json:"status"`
	OrderType    OrderType     `bson:"order_type" json:"order_type"`

	GainType        GainType `bson:"gain_type,omitempty" json:"gain_type,omitempty"`
	PackDescription string   `bson:"pack_description,omitempty" json:"pack_description,omitempty"`

	InviteCode string `bson:"invite_code" json:"invite_code"`
	InviteLink string `bson:"invite_link,omitempty" json:"invite_link,omitempty"`

	Participants []Participant `bson:"participants" json:"participants"`

	// Version guards replace-on-write: updates match on (_id, version) and
	// bump it, so a stale writer loses.
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type Participant struct {
	ID        string             `bson:"id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`

	// Position is 1-based and dense within the tontine: after any add,
	// remove or reorder the positions are exactly 1..N.
	Position          int  `bson:"position" json:"position"`
	HasReceivedPayout bool `bson:"has_received_payout" json:"has_received_payout"`

	PaymentHistory []Payment `bson:"payment_history" json:"payment_history"`

	AddedBy string    `bson:"added_by" json:"added_by"` // code, email, manual
	AddedAt time.Time `bson:"added_at" json:"added_at"`
}

type PaymentStatus string

const (
	PaymentPending         PaymentStatus = "pending"
	PaymentParticipantPaid PaymentStatus = "participant_paid"
	PaymentConfirmed       PaymentStatus = "confirmed"
	// PaymentOverdue is derived at read time, never stored.
	PaymentOverdue PaymentStatus = "overdue"
)

type Payment struct {
	ID            string        `bson:"id" json:"id"`
	ParticipantID string        `bson:"participant_id" json:"participant_id"`
	Cycle         int           `bson:"cycle" json:"cycle"`
	Amount        int64         `bson:"amount" json:"amount"`
	DueDate       time.Time     `bson:"due_date" json:"due_date"`
	PaidDate      *time.Time    `bson:"paid_date,omitempty" json:"paid_date,omitempty"`
	ReceiptURL    string        `bson:"receipt_url,omitempty" json:"receipt_url,omitempty"`
	Status        PaymentStatus `bson:"status" json:"status"`

	ParticipantValidated   bool       `bson:"participant_validated" json:"participant_validated"`
	ParticipantValidatedAt *time.Time `bson:"participant_validated_at,omitempty" json:"participant_validated_at,omitempty"`
	InitiatorValidated     bool       `bson:"initiator_validated" json:"initiator_validated"`
	InitiatorValidatedAt   *time.Time `bson:"initiator_validated_at,omitempty" json:"initiator_validated_at,omitempty"`

	// AuditLog is append-only; entries are never edited or removed.
	AuditLog []PaymentAudit `bson:"audit_log" json:"audit_log"`
}

type AuditAction string

const (
	AuditPaymentCreated        AuditAction = "payment_created"
	AuditParticipantMarkedPaid AuditAction = "participant_marked_paid"
	AuditInitiatorValidated    AuditAction = "initiator_validated"
)

type PaymentAudit struct {
	ID        string      `bson:"id" json:"id"`
	Action    AuditAction `bson:"action" json:"action"`
	UserID    string      `bson:"user_id" json:"user_id"`
	UserName  string      `bson:"user_name" json:"user_name"`
	Timestamp time.Time   `bson:"timestamp" json:"timestamp"`
	Notes     string      `bson:"notes,omitempty" json:"notes,omitempty"`
}

// ParticipantByID returns the participant with the given id, or nil.
func (t *Tontine) ParticipantByID(id string) *Participant {
	for i := range t.Participants {
		if t.Participants[i].ID == id {
			return &t.Participants[i]
		}
	}
	return nil
}

// ParticipantByUser returns the participant backed by a registered user.
func (t *Tontine) ParticipantByUser(userID primitive.ObjectID) *Participant {
	for i := range t.Participants {
		if t.Participants[i].UserID == userID {
			return &t.Participants[i]
		}
	}
	return nil
}

// PaymentForCycle returns the participant's payment for the given cycle,
// or nil. At most one exists per cycle.
func (p *Participant) PaymentForCycle(cycle int) *Payment {
	for i := range p.PaymentHistory {
		if p.PaymentHistory[i].Cycle == cycle {
			return &p.PaymentHistory[i]
		}
	}
	return nil
}

// CurrentBeneficiary returns the participant whose position matches the
// current cycle. Traditional tontines only; nil otherwise.
func (t *Tontine) CurrentBeneficiary() *Participant {
	if t.Type != TypeTraditional {
		return nil
	}
	for i := range t.Participants {
		if t.Participants[i].Position == t.CurrentCycle {
			return &t.Participants[i]
		}
	}
	return nil
}

// Clone deep-copies the aggregate so commands can build a new version
// without touching the one the caller holds.
func (t *Tontine) Clone() *Tontine {
	out := *t
	out.Participants = make([]Participant, len(t.Participants))
	for i, p := range t.Participants {
		cp := p
		cp.PaymentHistory = make([]Payment, len(p.PaymentHistory))
		for j, pay := range p.PaymentHistory {
			pc := pay
			pc.AuditLog = append([]PaymentAudit(nil), pay.AuditLog...)
			cp.PaymentHistory[j] = pc
		}
		out.Participants[i] = cp
	}
	if t.EndDate != nil {
		d := *t.EndDate
		out.EndDate = &d
	}
	if t.CollectWindow != nil {
		w := *t.CollectWindow
		out.CollectWindow = &w
	}
	if t.PaymentDay != nil {
		pd := *t.PaymentDay
		out.PaymentDay = &pd
	}
	return &out
}
