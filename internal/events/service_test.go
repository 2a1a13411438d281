package events

import (
	"context"
	"net/http"
	"testing"
	"time"

	"propdesk/internal/apperrors"
	"propdesk/pkg/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, event *Event) error {
	args := m.Called(ctx, event)
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Event), args.Error(1)
}

func TestService_CreateEvent_DefaultsToDraft(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*events.Event")).Return(nil)
	svc := NewService(repo, cache.NewMemory())

	creator := uuid.New()
	resp, err := svc.CreateEvent(context.Background(), creator, CreateEventRequest{
		Name:      "  Summer Gala ",
		StartDate: time.Now().Add(48 * time.Hour),
		Capacity:  50,
		Price:     2500,
	})

	require.NoError(t, err)
	assert.Equal(t, "Summer Gala", resp.Name)
	assert.Equal(t, StatusDraft, resp.Status)
	assert.Equal(t, int64(2500), resp.Price)

	created := repo.Calls[0].Arguments.Get(1).(*Event)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, creator, *created.CreatedBy)
}

func TestService_GetPublicEvent(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name     string
		event    *Event
		repoErr  error
		wantCode int
	}{
		{name: "active public", event: &Event{ID: id, IsPublic: true, Status: StatusActive, Capacity: 10}},
		{name: "private", event: &Event{ID: id, IsPublic: false, Status: StatusActive}, wantCode: http.StatusNotFound},
		{name: "draft", event: &Event{ID: id, IsPublic: true, Status: StatusDraft}, wantCode: http.StatusNotFound},
		{name: "missing", repoErr: ErrEventNotFound, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			if tt.event != nil {
				repo.On("GetByID", mock.Anything, id).Return(tt.event, nil)
			} else {
				repo.On("GetByID", mock.Anything, id).Return(nil, tt.repoErr)
			}
			svc := NewService(repo, cache.NewMemory())

			resp, err := svc.GetPublicEvent(context.Background(), id)
			if tt.wantCode == 0 {
				require.NoError(t, err)
				assert.Equal(t, id.String(), resp.ID)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsRawHTTPStatus(err, tt.wantCode))
		})
	}
}

func TestService_GetPublicEvent_ServedFromCache(t *testing.T) {
	id := uuid.New()
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, id).
		Return(&Event{ID: id, IsPublic: true, Status: StatusActive, Capacity: 10}, nil).Once()
	svc := NewService(repo, cache.NewMemory())

	for i := 0; i < 3; i++ {
		_, err := svc.GetPublicEvent(context.Background(), id)
		require.NoError(t, err)
	}
	repo.AssertNumberOfCalls(t, "GetByID", 1)
}
