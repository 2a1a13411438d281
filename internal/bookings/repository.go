package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"propdesk/internal/events"
	"propdesk/internal/sequence"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrDuplicateReference = errors.New("duplicate reference")
)

// Repository is the booking store. Methods called on the handle passed to
// WithinTransaction run on that transaction.
type Repository interface {
	WithinTransaction(ctx context.Context, fn func(tx Repository) error) error

	// Events
	GetEvent(ctx context.Context, eventID uuid.UUID) (*events.Event, error)
	LockEvent(ctx context.Context, eventID uuid.UUID) (*events.Event, error)
	BookedGuests(ctx context.Context, eventID uuid.UUID) (int, error)

	// References
	NextReference(ctx context.Context, name string) (string, error)

	// Bookings
	CreateBooking(ctx context.Context, booking *Booking) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*Booking, error)
	LockBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateLedger(ctx context.Context, booking *Booking, expectedRemaining int64) (bool, error)
	UpdateStatus(ctx context.Context, booking *Booking) error

	// Payments
	CreatePayment(ctx context.Context, payment *Payment) error
	ListPayments(ctx context.Context, bookingID uuid.UUID) ([]Payment, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithinTransaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) GetEvent(ctx context.Context, eventID uuid.UUID) (*events.Event, error) {
	var event events.Event
	if err := r.db.WithContext(ctx).Where("id = ?", eventID).First(&event).Error; err != nil {
		return nil, translateEventErr(err)
	}
	return &event, nil
}

// LockEvent reads the event with FOR UPDATE so concurrent bookings for the
// same event serialize on the capacity check.
func (r *repository) LockEvent(ctx context.Context, eventID uuid.UUID) (*events.Event, error) {
	var event events.Event
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", eventID).
		First(&event).Error
	if err != nil {
		return nil, translateEventErr(err)
	}
	return &event, nil
}

func translateEventErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return events.ErrEventNotFound
	}
	return fmt.Errorf("failed to load event: %w", err)
}

func (r *repository) BookedGuests(ctx context.Context, eventID uuid.UUID) (int, error) {
	var booked int
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("event_id = ?", eventID).
		Where("status <> ?", StatusCancelled).
		Select("COALESCE(SUM(number_of_guests), 0)").
		Scan(&booked).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum booked guests: %w", err)
	}
	return booked, nil
}

func (r *repository) NextReference(ctx context.Context, name string) (string, error) {
	return sequence.NextReference(ctx, r.db, name)
}

func (r *repository) CreateBooking(ctx context.Context, booking *Booking) error {
	if err := r.db.WithContext(ctx).Omit("Payments").Create(booking).Error; err != nil {
		return translateWriteErr("booking", err)
	}
	return nil
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, translateBookingErr(err)
	}
	return &booking, nil
}

func (r *repository) GetBookingByReference(ctx context.Context, reference string) (*Booking, error) {
	var booking Booking
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&booking).Error; err != nil {
		return nil, translateBookingErr(err)
	}
	return &booking, nil
}

func (r *repository) LockBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, translateBookingErr(err)
	}
	return &booking, nil
}

// UpdateLedger writes the money columns only if remaining_amount still holds
// the value the caller read. It reports false when another writer got there
// first.
func (r *repository) UpdateLedger(ctx context.Context, booking *Booking, expectedRemaining int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND remaining_amount = ?", booking.ID, expectedRemaining).
		Updates(map[string]interface{}{
			"amount_paid":      booking.AmountPaid,
			"remaining_amount": booking.RemainingAmount,
			"payment_status":   booking.PaymentStatus,
			"status":           booking.Status,
			"updated_at":       booking.UpdatedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update booking ledger: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) UpdateStatus(ctx context.Context, booking *Booking) error {
	updates := map[string]interface{}{
		"status":     booking.Status,
		"updated_at": booking.UpdatedAt,
	}
	if booking.CancelledAt != nil {
		updates["cancelled_at"] = *booking.CancelledAt
		updates["cancellation_reason"] = booking.CancellationReason
	}
	if booking.CompletedAt != nil {
		updates["completed_at"] = *booking.CompletedAt
	}

	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", booking.ID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return translateWriteErr("payment", err)
	}
	return nil
}

func (r *repository) ListPayments(ctx context.Context, bookingID uuid.UUID) ([]Payment, error) {
	var payments []Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func translateBookingErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBookingNotFound
	}
	return fmt.Errorf("failed to load booking: %w", err)
}

func translateWriteErr(entity string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s %s: %w", entity, pgErr.ConstraintName, ErrDuplicateReference)
	}
	return fmt.Errorf("failed to create %s: %w", entity, err)
}

// nowUTC is the default service clock
func nowUTC() time.Time {
	return time.Now().UTC()
}
