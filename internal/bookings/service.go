package bookings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"propdesk/internal/apperrors"
	"propdesk/internal/events"
	"propdesk/internal/notifications"
	"propdesk/internal/sequence"
	"propdesk/internal/shared/constants"
	"propdesk/pkg/cache"
	"propdesk/pkg/logger"
	"propdesk/pkg/metrics"

	"github.com/google/uuid"
)

// Business codes raised by the service itself
const (
	CodeConcurrentPayment = "CONCURRENT_PAYMENT"
	CodeReferenceConflict = "REFERENCE_CONFLICT"
)

// Notifier receives booking changes after they commit
type Notifier interface {
	Publish(ctx context.Context, notification *notifications.BookingNotification) error
}

// Service defines the contract for booking business logic
type Service interface {
	CreateBooking(ctx context.Context, eventID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error)
	ApplyPayment(ctx context.Context, bookingID uuid.UUID, req RecordPaymentRequest) (*PaymentResult, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID, reason, actorID string) (*BookingResponse, error)
	CompleteBooking(ctx context.Context, bookingID uuid.UUID, actorID string) (*BookingResponse, error)

	GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingResponse, error)
	GetBookingByReference(ctx context.Context, reference string) (*BookingResponse, error)
	ListPayments(ctx context.Context, bookingID uuid.UUID) ([]PaymentResponse, error)
	RemainingSeats(ctx context.Context, eventID uuid.UUID) (*AvailabilityResponse, error)
}

// Options tunes a Service. Zero values pick defaults.
type Options struct {
	AvailabilityTTL time.Duration
	Now             func() time.Time
}

type service struct {
	repo            Repository
	cache           cache.Service
	notifier        Notifier
	guard           CapacityGuard
	ledger          Ledger
	logger          *logger.Logger
	availabilityTTL time.Duration
	now             func() time.Time
}

// NewService creates a new booking service instance
func NewService(repo Repository, cacheService cache.Service, notifier Notifier, opts Options) Service {
	if opts.AvailabilityTTL <= 0 {
		opts.AvailabilityTTL = constants.TTL_EVENT_AVAILABILITY
	}
	if opts.Now == nil {
		opts.Now = nowUTC
	}
	return &service{
		repo:            repo,
		cache:           cacheService,
		notifier:        notifier,
		logger:          logger.GetDefault(),
		availabilityTTL: opts.AvailabilityTTL,
		now:             opts.Now,
	}
}

// CreateBooking reserves seats and records the initial payment. The event
// row stays locked from the capacity read until commit.
func (s *service) CreateBooking(ctx context.Context, eventID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error) {
	now := s.now()

	var booking *Booking
	err := s.repo.WithinTransaction(ctx, func(tx Repository) error {
		event, err := tx.LockEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if err := s.guard.CheckBookable(event, now); err != nil {
			return err
		}

		booked, err := tx.BookedGuests(ctx, eventID)
		if err != nil {
			return err
		}
		if err := s.guard.Reserve(event, booked, req.NumberOfGuests); err != nil {
			return err
		}

		total := event.Price * int64(req.NumberOfGuests)
		initial := total
		if req.PaymentMethod == PayPartially {
			initial = req.PartialPaymentAmount
		}

		b, err := s.ledger.NewBooking(event.ID, Guests{
			Name:  req.CustomerName,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
			Count: req.NumberOfGuests,
		}, total, initial, now)
		if err != nil {
			return err
		}

		if b.Reference, err = tx.NextReference(ctx, sequence.Booking); err != nil {
			return err
		}
		if err := tx.CreateBooking(ctx, b); err != nil {
			return err
		}

		if initial > 0 {
			payment, err := s.newPayment(ctx, tx, b.ID, initial, MethodOnline, now)
			if err != nil {
				return err
			}
			b.Payments = []Payment{*payment}
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, translateErr(err)
	}

	metrics.BookingsCreated.Inc()
	for _, p := range booking.Payments {
		metrics.PaymentsRecorded.Inc()
		metrics.PaymentVolume.Add(float64(p.Amount))
	}
	s.logger.LogBookingCreated(ctx, booking.ID.String(), booking.Reference, eventID.String(), booking.NumberOfGuests)
	s.invalidateAvailability(ctx, eventID)

	builder := notifications.NewNotificationBuilder().
		WithType(notifications.TypeBookingCreated).
		WithBooking(snapshot(booking)).
		At(now)
	if len(booking.Payments) > 0 {
		p := booking.Payments[0]
		builder.WithPayment(p.Reference, p.Amount, p.Method)
	}
	s.notify(ctx, builder.Build())

	resp := booking.ToResponse()
	return &resp, nil
}

// ApplyPayment records money against a booking. The booking row is locked
// and the ledger write is conditional on the remaining amount that was read,
// so two payments can never both spend the same balance.
func (s *service) ApplyPayment(ctx context.Context, bookingID uuid.UUID, req RecordPaymentRequest) (*PaymentResult, error) {
	now := s.now()

	var (
		booking *Booking
		payment *Payment
	)
	err := s.repo.WithinTransaction(ctx, func(tx Repository) error {
		b, err := tx.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}

		expected := b.RemainingAmount
		if err := s.ledger.ApplyPayment(b, req.Amount, now); err != nil {
			return err
		}

		updated, err := tx.UpdateLedger(ctx, b, expected)
		if err != nil {
			return err
		}
		if !updated {
			return apperrors.NewBusinessError(CodeConcurrentPayment, "The booking balance changed while this payment was being recorded. Please try again.").
				WithStatus(http.StatusConflict)
		}

		p, err := s.newPayment(ctx, tx, b.ID, req.Amount, req.PaymentMethod, now)
		if err != nil {
			return err
		}

		booking, payment = b, p
		return nil
	})
	if err != nil {
		return nil, translateErr(err)
	}

	metrics.PaymentsRecorded.Inc()
	metrics.PaymentVolume.Add(float64(payment.Amount))
	s.logger.LogPaymentRecorded(ctx, booking.ID.String(), payment.Reference, payment.Amount, booking.RemainingAmount)

	s.notify(ctx, notifications.NewNotificationBuilder().
		WithType(notifications.TypePaymentRecorded).
		WithBooking(snapshot(booking)).
		WithPayment(payment.Reference, payment.Amount, payment.Method).
		At(now).
		Build())

	return &PaymentResult{Booking: booking.ToResponse(), Payment: payment.ToResponse()}, nil
}

// CancelBooking cancels a booking. Cancelling an already cancelled booking
// succeeds without side effects.
func (s *service) CancelBooking(ctx context.Context, bookingID uuid.UUID, reason, actorID string) (*BookingResponse, error) {
	now := s.now()

	var (
		booking *Booking
		changed bool
	)
	err := s.repo.WithinTransaction(ctx, func(tx Repository) error {
		b, err := tx.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if changed, err = s.ledger.Cancel(b, reason, now); err != nil {
			return err
		}
		if changed {
			if err := tx.UpdateStatus(ctx, b); err != nil {
				return err
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, translateErr(err)
	}

	if changed {
		s.logger.LogBookingCancelled(ctx, booking.ID.String(), booking.EventID.String(), actorID)
		s.invalidateAvailability(ctx, booking.EventID)
		s.notify(ctx, notifications.NewNotificationBuilder().
			WithType(notifications.TypeBookingCancelled).
			WithBooking(snapshot(booking)).
			WithReason(booking.CancellationReason).
			WithActor(actorID).
			At(now).
			Build())
	}

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) CompleteBooking(ctx context.Context, bookingID uuid.UUID, actorID string) (*BookingResponse, error) {
	now := s.now()

	var booking *Booking
	err := s.repo.WithinTransaction(ctx, func(tx Repository) error {
		b, err := tx.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := s.ledger.Complete(b, now); err != nil {
			return err
		}
		if err := tx.UpdateStatus(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, translateErr(err)
	}

	s.logger.LogBookingCompleted(ctx, booking.ID.String(), actorID)
	s.notify(ctx, notifications.NewNotificationBuilder().
		WithType(notifications.TypeBookingCompleted).
		WithBooking(snapshot(booking)).
		WithActor(actorID).
		At(now).
		Build())

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingResponse, error) {
	b, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, translateErr(err)
	}
	return s.withPayments(ctx, b)
}

func (s *service) GetBookingByReference(ctx context.Context, reference string) (*BookingResponse, error) {
	b, err := s.repo.GetBookingByReference(ctx, reference)
	if err != nil {
		return nil, translateErr(err)
	}
	return s.withPayments(ctx, b)
}

func (s *service) withPayments(ctx context.Context, b *Booking) (*BookingResponse, error) {
	payments, err := s.repo.ListPayments(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Payments = payments
	resp := b.ToResponse()
	return &resp, nil
}

func (s *service) ListPayments(ctx context.Context, bookingID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.repo.GetBookingByID(ctx, bookingID); err != nil {
		return nil, translateErr(err)
	}
	payments, err := s.repo.ListPayments(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, payments[i].ToResponse())
	}
	return out, nil
}

// RemainingSeats reports availability for the public portal. Results are
// cached briefly and dropped whenever a booking on the event changes.
func (s *service) RemainingSeats(ctx context.Context, eventID uuid.UUID) (*AvailabilityResponse, error) {
	var resp AvailabilityResponse
	err := s.cache.GetOrSet(ctx, constants.BuildEventAvailabilityKey(eventID.String()), s.availabilityTTL,
		func() (interface{}, error) {
			event, err := s.repo.GetEvent(ctx, eventID)
			if err != nil {
				return nil, err
			}
			if !event.IsBookable() {
				return nil, events.ErrEventNotFound
			}
			booked, err := s.repo.BookedGuests(ctx, eventID)
			if err != nil {
				return nil, err
			}
			remaining := s.guard.RemainingSeats(event, booked)
			if remaining < 0 {
				remaining = 0
			}
			return AvailabilityResponse{
				EventID:   eventID.String(),
				Capacity:  event.Capacity,
				Booked:    booked,
				Remaining: remaining,
			}, nil
		}, &resp)
	if err != nil {
		return nil, translateErr(err)
	}
	return &resp, nil
}

func (s *service) newPayment(ctx context.Context, tx Repository, bookingID uuid.UUID, amount int64, method string, now time.Time) (*Payment, error) {
	ref, err := tx.NextReference(ctx, sequence.Payment)
	if err != nil {
		return nil, err
	}
	p := &Payment{
		Reference: ref,
		BookingID: bookingID,
		Amount:    amount,
		Method:    method,
		Status:    PaymentCompleted,
		CreatedAt: now,
	}
	if err := tx.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) invalidateAvailability(ctx context.Context, eventID uuid.UUID) {
	if err := s.cache.Delete(ctx, constants.BuildEventAvailabilityKey(eventID.String())); err != nil {
		s.logger.WarnContext(ctx, "availability cache invalidation failed", "event_id", eventID.String(), "error", err)
	}
}

// notify publishes after commit. A lost notification never fails the
// request that caused it.
func (s *service) notify(ctx context.Context, n *notifications.BookingNotification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "booking notification failed",
			"type", n.Type,
			"booking_reference", n.Reference,
			"error", err,
		)
	}
}

func snapshot(b *Booking) notifications.BookingSnapshot {
	return notifications.BookingSnapshot{
		ID:              b.ID,
		Reference:       b.Reference,
		EventID:         b.EventID,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		Status:          b.Status.String(),
		PaymentStatus:   string(b.PaymentStatus),
		TotalAmount:     b.TotalAmount,
		AmountPaid:      b.AmountPaid,
		RemainingAmount: b.RemainingAmount,
	}
}

// translateErr turns store sentinels into client facing failures. Typed
// domain failures pass through untouched.
func translateErr(err error) error {
	switch {
	case errors.Is(err, events.ErrEventNotFound):
		return apperrors.NotFound("Event not found")
	case errors.Is(err, ErrBookingNotFound):
		return apperrors.NotFound("Booking not found")
	case errors.Is(err, ErrDuplicateReference):
		return apperrors.NewBusinessError(CodeReferenceConflict, "A reference number collision occurred. Please try again.").
			WithStatus(http.StatusConflict)
	}
	if apperrors.Classify(err).Kind != apperrors.KindUnknown {
		return err
	}
	return fmt.Errorf("booking operation failed: %w", err)
}
