package events

import (
	"propdesk/internal/shared/middleware"
	"propdesk/internal/users"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller, auth *middleware.Auth) {
	// Public portal
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("/:id", controller.GetEvent) // GET /api/v1/events/:id
	}

	adminEvents := router.Group("/admin/events")
	adminEvents.Use(auth.Required(), middleware.RequirePermission(users.PermManageEvents))
	{
		adminEvents.POST("", controller.CreateEvent) // POST /api/v1/admin/events
	}
}
