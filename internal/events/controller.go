package events

import (
	"net/http"

	"propdesk/internal/apperrors"
	"propdesk/internal/shared/reqctx"
	"propdesk/internal/shared/utils/response"
	"propdesk/internal/shared/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreateEvent(c *gin.Context)
	GetEvent(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// CreateEvent handles POST /api/v1/admin/events
func (ctrl *controller) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := validation.Bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	var userID uuid.UUID
	if user, ok := reqctx.CurrentUser(c); ok {
		userID, _ = uuid.Parse(user.ID)
	}

	event, err := ctrl.service.CreateEvent(c.Request.Context(), userID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Event created successfully", event, nil)
}

// GetEvent handles GET /api/v1/events/:id
func (ctrl *controller) GetEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.NotFound("Event not found"))
		return
	}

	event, err := ctrl.service.GetPublicEvent(c.Request.Context(), eventID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Event retrieved successfully", event, nil)
}
