package bookings

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsClosed reports whether the booking no longer accepts money
func (s Status) IsClosed() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Payment record states
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment methods accepted for payments recorded against a booking.
// Portal bookings pay online.
const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodBankTransfer = "bank_transfer"
	MethodOnline       = "online"
)

// Booking is a reservation of guests on an event. Amounts are minor currency
// units and AmountPaid + RemainingAmount always equals TotalAmount.
type Booking struct {
	ID                 uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Reference          string        `gorm:"size:20;uniqueIndex;not null" json:"reference"`
	EventID            uuid.UUID     `gorm:"type:uuid;index;not null" json:"event_id"`
	CustomerName       string        `gorm:"size:255;not null" json:"customer_name"`
	CustomerEmail      string        `gorm:"size:255;not null;index" json:"customer_email"`
	CustomerPhone      string        `gorm:"size:50" json:"customer_phone"`
	NumberOfGuests     int           `gorm:"not null;check:number_of_guests > 0" json:"number_of_guests"`
	TotalAmount        int64         `gorm:"not null;check:total_amount >= 0" json:"total_amount"`
	AmountPaid         int64         `gorm:"not null;default:0;check:amount_paid >= 0" json:"amount_paid"`
	RemainingAmount    int64         `gorm:"not null;default:0;check:remaining_amount >= 0" json:"remaining_amount"`
	PaymentStatus      PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid';check:payment_status IN ('unpaid','partial','paid')" json:"payment_status"`
	Status             Status        `gorm:"type:varchar(20);not null;default:'pending';check:status IN ('pending','confirmed','cancelled','completed')" json:"status"`
	CancellationReason string        `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	Payments []Payment `gorm:"foreignKey:BookingID;constraint:OnDelete:RESTRICT;" json:"payments,omitempty"`
}

// Payment is an immutable money movement against a booking
type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Reference string    `gorm:"size:20;uniqueIndex;not null" json:"reference"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	Amount    int64     `gorm:"not null;check:amount > 0" json:"amount"`
	Method    string    `gorm:"type:varchar(30);not null" json:"method"`
	Status    string    `gorm:"type:varchar(20);not null;default:'completed';check:status IN ('pending','completed','failed')" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

func (b *Booking) IsCompleted() bool {
	return b.Status == StatusCompleted
}

// Balanced reports whether the ledger invariant holds
func (b *Booking) Balanced() bool {
	return b.AmountPaid >= 0 && b.RemainingAmount >= 0 && b.AmountPaid+b.RemainingAmount == b.TotalAmount
}
