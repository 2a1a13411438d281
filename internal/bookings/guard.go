package bookings

import (
	"net/http"
	"time"

	"propdesk/internal/apperrors"
	"propdesk/internal/events"
)

// Business codes raised by CapacityGuard
const (
	CodeInvalidGuestCount    = "INVALID_GUEST_COUNT"
	CodeInsufficientCapacity = "INSUFFICIENT_CAPACITY"
	CodeEventAlreadyStarted  = "EVENT_ALREADY_STARTED"
)

// CapacityGuard decides whether an event can take more guests. booked is the
// number of guests on the event's non-cancelled bookings, read by the caller
// while it holds the event row lock.
type CapacityGuard struct{}

// RemainingSeats returns capacity minus booked. It goes negative only if the
// event capacity was lowered below existing bookings.
func (CapacityGuard) RemainingSeats(event *events.Event, booked int) int {
	return event.Capacity - booked
}

// CheckBookable rejects events the public portal must not sell
func (CapacityGuard) CheckBookable(event *events.Event, now time.Time) error {
	if event == nil || !event.IsBookable() {
		return apperrors.NotFound("Event not found")
	}
	if !event.StartDate.After(now) {
		return apperrors.NewBusinessError(CodeEventAlreadyStarted, "This event has already started and can no longer be booked.").
			With("start_date", event.StartDate.UTC().Format(time.RFC3339))
	}
	return nil
}

// Reserve checks that requested guests fit in what is left
func (g CapacityGuard) Reserve(event *events.Event, booked, requested int) error {
	if requested < 1 {
		return apperrors.NewBusinessError(CodeInvalidGuestCount, "At least one guest is required.").
			With("requested", requested)
	}
	remaining := g.RemainingSeats(event, booked)
	if remaining < 0 {
		remaining = 0
	}
	if requested > remaining {
		return apperrors.NewBusinessError(CodeInsufficientCapacity, "Not enough seats available for this event.").
			With("available", remaining).
			With("requested", requested).
			WithStatus(http.StatusUnprocessableEntity)
	}
	return nil
}
