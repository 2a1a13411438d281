package errorreport

import (
	"propdesk/internal/shared/middleware"
	"propdesk/internal/users"

	"github.com/gin-gonic/gin"
)

type Router struct {
	controller *Controller
	auth       *middleware.Auth
}

func NewRouter(controller *Controller, auth *middleware.Auth) *Router {
	return &Router{controller: controller, auth: auth}
}

// SetupRoutes registers the operator lookup under /admin
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin/error-reports")
	admin.Use(r.auth.Required(), middleware.RequireRole(string(users.RoleAdmin)))
	{
		admin.GET("/:id", r.controller.GetReport)
	}
}
