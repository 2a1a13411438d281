package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"propdesk/internal/apperrors"
	"propdesk/internal/shared/constants"
	"propdesk/pkg/cache"

	"github.com/google/uuid"
)

type Service interface {
	CreateEvent(ctx context.Context, userID uuid.UUID, req CreateEventRequest) (*EventResponse, error)
	GetPublicEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error)
}

type service struct {
	repo  Repository
	cache cache.Service
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{repo: repo, cache: cacheService}
}

func (s *service) CreateEvent(ctx context.Context, userID uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	status := StatusDraft
	if req.Status != "" {
		status = Status(req.Status)
	}

	event := &Event{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Venue:       req.Venue,
		StartDate:   req.StartDate.UTC(),
		Capacity:    req.Capacity,
		Price:       req.Price,
		IsPublic:    req.IsPublic,
		Status:      status,
	}
	if userID != uuid.Nil {
		event.CreatedBy = &userID
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	resp := event.ToResponse()
	return &resp, nil
}

// GetPublicEvent returns an event visible on the public portal. Drafts,
// private and closed events are reported as missing.
func (s *service) GetPublicEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	var resp EventResponse
	err := s.cache.GetOrSet(ctx, constants.BuildEventDetailKey(id.String()), constants.TTL_EVENT_DETAIL,
		func() (interface{}, error) {
			event, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if !event.IsBookable() {
				return nil, ErrEventNotFound
			}
			return event.ToResponse(), nil
		}, &resp)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, apperrors.NotFound("Event not found")
		}
		return nil, fmt.Errorf("get public event: %w", err)
	}
	return &resp, nil
}
