package bookings

import (
	"net/http"
	"testing"
	"time"

	"propdesk/internal/apperrors"
	"propdesk/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func activeEvent(capacity int, price int64) *events.Event {
	return &events.Event{
		ID:        uuid.New(),
		Name:      "Rooftop Dinner",
		Capacity:  capacity,
		Price:     price,
		IsPublic:  true,
		Status:    events.StatusActive,
		StartDate: testNow.Add(7 * 24 * time.Hour),
	}
}

func TestCapacityGuard_FillsToCapacity(t *testing.T) {
	var g CapacityGuard
	event := activeEvent(10, 1000)

	// three bookings of 3, 3 and 2 guests
	booked := 3 + 3 + 2
	assert.Equal(t, 2, g.RemainingSeats(event, booked))

	err := g.Reserve(event, booked, 3)
	require.Error(t, err)

	ce := apperrors.Classify(err)
	assert.Equal(t, apperrors.KindBusinessLogic, ce.Kind)
	assert.Equal(t, CodeInsufficientCapacity, ce.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ce.HTTPStatus)
	available, _ := ce.Context.Get("available")
	requested, _ := ce.Context.Get("requested")
	assert.Equal(t, 2, available)
	assert.Equal(t, 3, requested)
	assert.Equal(t, []string{"available", "requested"}, ce.Context.Keys())
}

func TestCapacityGuard_ReserveBoundaries(t *testing.T) {
	var g CapacityGuard
	event := activeEvent(10, 1000)

	assert.NoError(t, g.Reserve(event, 8, 2), "exactly the remaining seats")
	assert.NoError(t, g.Reserve(event, 0, 10), "whole capacity")
	assert.Error(t, g.Reserve(event, 10, 1), "sold out")

	err := g.Reserve(event, 0, 0)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidGuestCount, apperrors.Classify(err).Code)

	// capacity lowered below existing bookings reports zero available
	err = g.Reserve(event, 12, 1)
	require.Error(t, err)
	available, _ := apperrors.Classify(err).Context.Get("available")
	assert.Equal(t, 0, available)
}

func TestCapacityGuard_CheckBookable(t *testing.T) {
	var g CapacityGuard

	tests := []struct {
		name     string
		mutate   func(e *events.Event)
		wantKind apperrors.Kind
		wantCode string
	}{
		{name: "active public future event", mutate: func(*events.Event) {}},
		{name: "private", mutate: func(e *events.Event) { e.IsPublic = false }, wantKind: apperrors.KindHTTPStatus},
		{name: "draft", mutate: func(e *events.Event) { e.Status = events.StatusDraft }, wantKind: apperrors.KindHTTPStatus},
		{name: "cancelled", mutate: func(e *events.Event) { e.Status = events.StatusCancelled }, wantKind: apperrors.KindHTTPStatus},
		{name: "starts now", mutate: func(e *events.Event) { e.StartDate = testNow }, wantKind: apperrors.KindBusinessLogic, wantCode: CodeEventAlreadyStarted},
		{name: "already started", mutate: func(e *events.Event) { e.StartDate = testNow.Add(-time.Hour) }, wantKind: apperrors.KindBusinessLogic, wantCode: CodeEventAlreadyStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := activeEvent(10, 1000)
			tt.mutate(event)

			err := g.CheckBookable(event, testNow)
			if tt.wantKind == apperrors.KindUnknown {
				assert.NoError(t, err)
				return
			}
			ce := apperrors.Classify(err)
			assert.Equal(t, tt.wantKind, ce.Kind)
			if tt.wantKind == apperrors.KindHTTPStatus {
				assert.Equal(t, http.StatusNotFound, ce.HTTPStatus)
			}
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, ce.Code)
			}
		})
	}

	assert.True(t, apperrors.IsRawHTTPStatus(g.CheckBookable(nil, testNow), http.StatusNotFound))
}
