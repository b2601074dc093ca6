package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotifPaymentDue       NotificationType = "payment_due"
	NotifPaymentReceived  NotificationType = "payment_received"
	NotifPaymentValidated NotificationType = "payment_validated"
	NotifPayoutReady      NotificationType = "payout_ready"
	NotifTontineStarted   NotificationType = "tontine_started"
	NotifTontineSuspended NotificationType = "tontine_suspended"
)

// Notification is an in-app record only; nothing in this service pushes or
// sends them anywhere.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Type      NotificationType   `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Read      bool               `bson:"read" json:"read"`
	TontineID primitive.ObjectID `bson:"tontine_id,omitempty" json:"tontine_id,omitempty"`
	PaymentID string             `bson:"payment_id,omitempty" json:"payment_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
