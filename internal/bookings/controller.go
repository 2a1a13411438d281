package bookings

import (
	"net/http"

	"propdesk/internal/apperrors"
	"propdesk/internal/flash"
	"propdesk/internal/shared/reqctx"
	"propdesk/internal/shared/utils/response"
	"propdesk/internal/shared/validation"
	"propdesk/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FlashWriter stores one-shot data for the page a browser is redirected to
type FlashWriter interface {
	Put(c *gin.Context, data *apperrors.Context) error
}

type Controller struct {
	service Service
	flashes FlashWriter
	logger  *logger.Logger
}

func NewController(service Service, flashes FlashWriter) *Controller {
	return &Controller{service: service, flashes: flashes, logger: logger.GetDefault()}
}

// BookEvent handles POST /api/v1/events/:id/book and the portal form post
func (ctrl *Controller) BookEvent(c *gin.Context) {
	eventID, ok := parseID(c, "Event not found")
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := validation.Bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	booking, err := ctrl.service.CreateBooking(c.Request.Context(), eventID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctrl.respond(c, http.StatusCreated, "Booking "+booking.Reference+" created successfully", booking, "/bookings/"+booking.ID)
}

// GetAvailability handles GET /api/v1/events/:id/availability
func (ctrl *Controller) GetAvailability(c *gin.Context) {
	eventID, ok := parseID(c, "Event not found")
	if !ok {
		return
	}

	availability, err := ctrl.service.RemainingSeats(c.Request.Context(), eventID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Availability retrieved successfully", availability, nil)
}

// GetBooking handles GET /api/v1/bookings/:id
func (ctrl *Controller) GetBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "Booking not found")
	if !ok {
		return
	}

	booking, err := ctrl.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

// ShowBooking handles GET /bookings/:id, the landing page of web redirects.
// Flash data delivered with the request is returned next to the booking.
func (ctrl *Controller) ShowBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "Booking not found")
	if !ok {
		return
	}

	booking, err := ctrl.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking retrieved successfully", gin.H{
		"booking": booking,
		"flash":   flash.Get(c),
	}, nil)
}

// GetBookingByReference handles GET /api/v1/bookings/reference/:reference
func (ctrl *Controller) GetBookingByReference(c *gin.Context) {
	booking, err := ctrl.service.GetBookingByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

// ListPayments handles GET /api/v1/bookings/:id/payments
func (ctrl *Controller) ListPayments(c *gin.Context) {
	bookingID, ok := parseID(c, "Booking not found")
	if !ok {
		return
	}

	payments, err := ctrl.service.ListPayments(c.Request.Context(), bookingID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payments retrieved successfully", payments, nil)
}

// RecordPayment handles POST /bookings/:id/payment
func (ctrl *Controller) RecordPayment(c *gin.Context) {
	bookingID, ok := parseID(c, "Booking not found")
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := validation.Bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := ctrl.service.ApplyPayment(c.Request.Context(), bookingID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctrl.respond(c, http.StatusOK, "Payment "+result.Payment.Reference+" recorded successfully", result, "/bookings/"+bookingID.String())
}

// CancelBooking handles PATCH /bookings/:id/cancel. The body is optional.
func (ctrl *Controller) CancelBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "Booking not found")
	if !ok {
		return
	}

	var req CancelBookingRequest
	if c.Request.ContentLength != 0 {
		if err := validation.Bind(c, &req); err != nil {
			_ = c.Error(err)
			return
		}
	}

	booking, err := ctrl.service.CancelBooking(c.Request.Context(), bookingID, req.Reason, actorID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctrl.respond(c, http.StatusOK, "Booking "+booking.Reference+" cancelled", booking, "/bookings/"+booking.ID)
}

// CompleteBooking handles PATCH /api/v1/bookings/:id/complete
func (ctrl *Controller) CompleteBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "Booking not found")
	if !ok {
		return
	}

	booking, err := ctrl.service.CompleteBooking(c.Request.Context(), bookingID, actorID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctrl.respond(c, http.StatusOK, "Booking "+booking.Reference+" completed", booking, "/bookings/"+booking.ID)
}

// respond writes a JSON envelope for API callers and a redirect with a
// success flash for browsers.
func (ctrl *Controller) respond(c *gin.Context, status int, message string, data interface{}, redirectTo string) {
	if ctrl.flashes == nil || reqctx.WantsStructuredResponse(c.Request) {
		response.RespondJSON(c, "success", status, message, data, nil)
		return
	}

	if err := ctrl.flashes.Put(c, apperrors.NewContext().Set("success", message)); err != nil {
		ctrl.logger.WarnContext(c.Request.Context(), "success flash not stored", "error", err)
	}
	c.Redirect(http.StatusFound, redirectTo)
}

// parseID reads the :id param. Malformed ids are reported as missing.
func parseID(c *gin.Context, notFound string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.NotFound(notFound))
		return uuid.Nil, false
	}
	return id, true
}

func actorID(c *gin.Context) string {
	if user, ok := reqctx.CurrentUser(c); ok {
		return user.ID
	}
	return ""
}
