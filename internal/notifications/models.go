package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeBookingCreated   NotificationType = "booking.created"
	TypePaymentRecorded  NotificationType = "booking.payment_recorded"
	TypeBookingCancelled NotificationType = "booking.cancelled"
	TypeBookingCompleted NotificationType = "booking.completed"
)

// BookingNotification is the message published for every committed booking
// change. Downstream consumers (mailers, accounting exports) key on Type.
type BookingNotification struct {
	ID   uuid.UUID        `json:"id"`
	Type NotificationType `json:"type"`

	BookingID     uuid.UUID `json:"booking_id"`
	Reference     string    `json:"reference"`
	EventID       uuid.UUID `json:"event_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`

	Status          string `json:"status"`
	PaymentStatus   string `json:"payment_status"`
	TotalAmount     int64  `json:"total_amount"`
	AmountPaid      int64  `json:"amount_paid"`
	RemainingAmount int64  `json:"remaining_amount"`

	// Set on payment notifications only
	PaymentReference string `json:"payment_reference,omitempty"`
	PaymentAmount    int64  `json:"payment_amount,omitempty"`
	PaymentMethod    string `json:"payment_method,omitempty"`

	Reason  string `json:"reason,omitempty"`
	ActorID string `json:"actor_id,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// BookingSnapshot is the booking state copied into a notification
type BookingSnapshot struct {
	ID              uuid.UUID
	Reference       string
	EventID         uuid.UUID
	CustomerName    string
	CustomerEmail   string
	Status          string
	PaymentStatus   string
	TotalAmount     int64
	AmountPaid      int64
	RemainingAmount int64
}

type NotificationBuilder struct {
	notification *BookingNotification
}

func NewNotificationBuilder() *NotificationBuilder {
	return &NotificationBuilder{
		notification: &BookingNotification{
			ID:         uuid.New(),
			OccurredAt: time.Now().UTC(),
		},
	}
}

func (nb *NotificationBuilder) WithType(t NotificationType) *NotificationBuilder {
	nb.notification.Type = t
	return nb
}

func (nb *NotificationBuilder) WithBooking(b BookingSnapshot) *NotificationBuilder {
	n := nb.notification
	n.BookingID = b.ID
	n.Reference = b.Reference
	n.EventID = b.EventID
	n.CustomerName = b.CustomerName
	n.CustomerEmail = b.CustomerEmail
	n.Status = b.Status
	n.PaymentStatus = b.PaymentStatus
	n.TotalAmount = b.TotalAmount
	n.AmountPaid = b.AmountPaid
	n.RemainingAmount = b.RemainingAmount
	return nb
}

func (nb *NotificationBuilder) WithPayment(reference string, amount int64, method string) *NotificationBuilder {
	nb.notification.PaymentReference = reference
	nb.notification.PaymentAmount = amount
	nb.notification.PaymentMethod = method
	return nb
}

func (nb *NotificationBuilder) WithReason(reason string) *NotificationBuilder {
	nb.notification.Reason = reason
	return nb
}

func (nb *NotificationBuilder) WithActor(actorID string) *NotificationBuilder {
	nb.notification.ActorID = actorID
	return nb
}

func (nb *NotificationBuilder) At(t time.Time) *NotificationBuilder {
	nb.notification.OccurredAt = t.UTC()
	return nb
}

func (nb *NotificationBuilder) Build() *BookingNotification {
	return nb.notification
}

// GetPartitionKey keeps every message of one booking on one partition
func (n *BookingNotification) GetPartitionKey() string {
	return n.BookingID.String()
}

func (n *BookingNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
