package events

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"propdesk/internal/apperrors"
	"propdesk/internal/shared/reqctx"
	"propdesk/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(repo Repository, captured *error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			*captured = c.Errors.Last().Err
			c.Status(http.StatusTeapot)
		}
	})
	r.Use(func(c *gin.Context) {
		reqctx.SetUser(c, reqctx.User{ID: "9b0f8a44-3f5e-4d1c-8a55-2f3c5d6e7f80", Role: "MANAGER"})
	})

	ctrl := NewController(NewService(repo, cache.NewMemory()))
	r.POST("/admin/events", ctrl.CreateEvent)
	r.GET("/events/:id", ctrl.GetEvent)
	return r
}

func TestController_CreateEvent(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *Event) bool {
		return e.Name == "Open House" && e.Capacity == 20 && e.CreatedBy != nil &&
			e.CreatedBy.String() == "9b0f8a44-3f5e-4d1c-8a55-2f3c5d6e7f80"
	})).Return(nil)

	var captured error
	r := setupRouter(repo, &captured)

	body := `{"name":"Open House","venue":"Gallery","startDate":"2030-05-01T10:00:00Z","capacity":20,"price":0,"isPublic":true,"status":"active"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.NoError(t, captured)
	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestController_CreateEvent_Invalid(t *testing.T) {
	repo := new(MockRepository)
	var captured error
	r := setupRouter(repo, &captured)

	req := httptest.NewRequest(http.MethodPost, "/admin/events", strings.NewReader(`{"name":"x","capacity":0}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Error(t, captured)
	ce := apperrors.Classify(captured)
	require.Equal(t, apperrors.KindValidation, ce.Kind)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestController_GetEvent_MalformedID(t *testing.T) {
	var captured error
	r := setupRouter(new(MockRepository), &captured)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/not-a-uuid", nil))

	require.Error(t, captured)
	assert.Equal(t, http.StatusNotFound, apperrors.Classify(captured).HTTPStatus)
}

func TestController_GetEvent_Unknown(t *testing.T) {
	repo := new(MockRepository)
	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, ErrEventNotFound)

	var captured error
	r := setupRouter(repo, &captured)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/"+id.String(), nil))

	require.Error(t, captured)
	assert.Equal(t, http.StatusNotFound, apperrors.Classify(captured).HTTPStatus)
}
