package bookings

import (
	"propdesk/internal/shared/middleware"
	"propdesk/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes registers the API routes under rg (/api/v1)
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, auth *middleware.Auth) {
	// Public portal
	events := rg.Group("/events")
	{
		events.POST("/:id/book", auth.Optional(), controller.BookEvent) // POST /api/v1/events/:id/book
		events.GET("/:id/availability", controller.GetAvailability)     // GET /api/v1/events/:id/availability
	}

	bookings := rg.Group("/bookings")
	bookings.Use(auth.Required())
	registerStaffRoutes(bookings, controller)

	bookings.GET("/:id", middleware.RequirePermission(users.PermViewBookings), controller.GetBooking)
	bookings.GET("/:id/payments", middleware.RequirePermission(users.PermViewBookings), controller.ListPayments)
	bookings.GET("/reference/:reference", middleware.RequirePermission(users.PermViewBookings), controller.GetBookingByReference)
	bookings.PATCH("/:id/complete", middleware.RequirePermission(users.PermManageBookings), controller.CompleteBooking)
}

// SetupWebRoutes registers the form endpoints used by browsers. Failures
// there come back as redirects with flash data.
func SetupWebRoutes(r gin.IRouter, controller *Controller, auth *middleware.Auth) {
	// Signed in staff booking for a guest show up in error reports
	r.POST("/events/:id/book", auth.Optional(), controller.BookEvent)

	bookings := r.Group("/bookings")
	bookings.Use(auth.Required())
	registerStaffRoutes(bookings, controller)

	bookings.GET("/:id", middleware.RequirePermission(users.PermViewBookings), controller.ShowBooking)

	// HTML forms cannot send PATCH
	bookings.POST("/:id/cancel", middleware.RequirePermission(users.PermCancelBookings), controller.CancelBooking)
}

func registerStaffRoutes(bookings *gin.RouterGroup, controller *Controller) {
	bookings.POST("/:id/payment", middleware.RequirePermission(users.PermCreateTransactions), controller.RecordPayment)
	bookings.PATCH("/:id/cancel", middleware.RequirePermission(users.PermCancelBookings), controller.CancelBooking)
}
