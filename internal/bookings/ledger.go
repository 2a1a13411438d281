package bookings

import (
	"net/http"
	"strings"
	"time"

	"propdesk/internal/apperrors"

	"github.com/google/uuid"
)

// Business codes raised by Ledger
const (
	CodePaymentExceedsTotal     = "PAYMENT_EXCEEDS_TOTAL"
	CodeInvalidPaymentAmount    = "INVALID_PAYMENT_AMOUNT"
	CodeBookingNotPayable       = "BOOKING_NOT_PAYABLE"
	CodePaymentExceedsBalance   = "PAYMENT_EXCEEDS_BALANCE"
	CodeBookingAlreadyCompleted = "BOOKING_ALREADY_COMPLETED"
	CodeBookingNotCompletable   = "BOOKING_NOT_COMPLETABLE"
)

// Ledger owns every change to a booking's money and status fields. It does
// no I/O; callers persist the result inside one transaction.
type Ledger struct{}

// Guests carries the customer side of a new booking
type Guests struct {
	Name  string
	Email string
	Phone string
	Count int
}

// NewBooking builds an unsaved booking for eventID with initialPayment
// already applied.
func (Ledger) NewBooking(eventID uuid.UUID, guests Guests, total, initialPayment int64, now time.Time) (*Booking, error) {
	if initialPayment < 0 {
		return nil, apperrors.NewBusinessError(CodeInvalidPaymentAmount, "Payment amount cannot be negative.").
			With("amount", initialPayment)
	}
	if initialPayment > total {
		return nil, apperrors.NewBusinessError(CodePaymentExceedsTotal, "Payment amount exceeds the booking total.").
			With("total", total).
			With("amount", initialPayment)
	}

	b := &Booking{
		EventID:         eventID,
		CustomerName:    strings.TrimSpace(guests.Name),
		CustomerEmail:   strings.ToLower(strings.TrimSpace(guests.Email)),
		CustomerPhone:   strings.TrimSpace(guests.Phone),
		NumberOfGuests:  guests.Count,
		TotalAmount:     total,
		AmountPaid:      initialPayment,
		RemainingAmount: total - initialPayment,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	b.PaymentStatus = derivePaymentStatus(b)
	if b.PaymentStatus == PaymentStatusPaid {
		b.Status = StatusConfirmed
	}
	return b, nil
}

// ApplyPayment moves amount from remaining to paid. Status only moves
// forward: a fully paid booking becomes confirmed, anything else keeps its
// current status.
func (Ledger) ApplyPayment(b *Booking, amount int64, now time.Time) error {
	if b.Status.IsClosed() {
		return apperrors.NewBusinessError(CodeBookingNotPayable, "Payments cannot be recorded on a "+b.Status.String()+" booking.").
			With("status", b.Status.String()).
			WithStatus(http.StatusConflict)
	}
	if amount <= 0 {
		return apperrors.NewBusinessError(CodeInvalidPaymentAmount, "Payment amount must be greater than zero.").
			With("amount", amount)
	}
	if amount > b.RemainingAmount {
		return apperrors.NewBusinessError(CodePaymentExceedsBalance, "amount exceeds remaining balance").
			With("remaining", b.RemainingAmount).
			With("amount", amount)
	}

	b.AmountPaid += amount
	b.RemainingAmount -= amount
	if b.RemainingAmount <= 0 {
		b.PaymentStatus = PaymentStatusPaid
		b.Status = StatusConfirmed
	} else {
		b.PaymentStatus = PaymentStatusPartial
	}
	b.UpdatedAt = now
	return nil
}

// Cancel marks b cancelled. Cancelling twice is a no-op and reports
// changed=false.
func (Ledger) Cancel(b *Booking, reason string, now time.Time) (bool, error) {
	if b.IsCompleted() {
		return false, apperrors.NewBusinessError(CodeBookingAlreadyCompleted, "A completed booking cannot be cancelled.").
			With("status", b.Status.String()).
			WithStatus(http.StatusConflict)
	}
	if b.IsCancelled() {
		return false, nil
	}

	b.Status = StatusCancelled
	b.CancellationReason = strings.TrimSpace(reason)
	b.CancelledAt = &now
	b.UpdatedAt = now
	return true, nil
}

// Complete closes a confirmed booking after the event took place
func (Ledger) Complete(b *Booking, now time.Time) error {
	if b.Status != StatusConfirmed {
		return apperrors.NewBusinessError(CodeBookingNotCompletable, "Only confirmed bookings can be completed.").
			With("status", b.Status.String()).
			WithStatus(http.StatusConflict)
	}
	b.Status = StatusCompleted
	b.CompletedAt = &now
	b.UpdatedAt = now
	return nil
}

func derivePaymentStatus(b *Booking) PaymentStatus {
	switch {
	case b.RemainingAmount <= 0:
		return PaymentStatusPaid
	case b.AmountPaid > 0:
		return PaymentStatusPartial
	default:
		return PaymentStatusUnpaid
	}
}
