package bookings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"propdesk/internal/apperrors"
	"propdesk/internal/flash"
	"propdesk/internal/shared/reqctx"
	"propdesk/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateBooking(ctx context.Context, eventID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error) {
	args := m.Called(ctx, eventID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BookingResponse), args.Error(1)
}

func (m *MockService) ApplyPayment(ctx context.Context, bookingID uuid.UUID, req RecordPaymentRequest) (*PaymentResult, error) {
	args := m.Called(ctx, bookingID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentResult), args.Error(1)
}

func (m *MockService) CancelBooking(ctx context.Context, bookingID uuid.UUID, reason, actorID string) (*BookingResponse, error) {
	args := m.Called(ctx, bookingID, reason, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BookingResponse), args.Error(1)
}

func (m *MockService) CompleteBooking(ctx context.Context, bookingID uuid.UUID, actorID string) (*BookingResponse, error) {
	args := m.Called(ctx, bookingID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BookingResponse), args.Error(1)
}

func (m *MockService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingResponse, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BookingResponse), args.Error(1)
}

func (m *MockService) GetBookingByReference(ctx context.Context, reference string) (*BookingResponse, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BookingResponse), args.Error(1)
}

func (m *MockService) ListPayments(ctx context.Context, bookingID uuid.UUID) ([]PaymentResponse, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PaymentResponse), args.Error(1)
}

func (m *MockService) RemainingSeats(ctx context.Context, eventID uuid.UUID) (*AvailabilityResponse, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AvailabilityResponse), args.Error(1)
}

type recordingFlash struct {
	last *apperrors.Context
}

func (r *recordingFlash) Put(_ *gin.Context, data *apperrors.Context) error {
	r.last = data
	return nil
}

func setupRouter(svc Service, flashes FlashWriter, captured *error) *gin.Engine {
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
		reqctx.SetUser(c, reqctx.User{ID: "staff-1", Role: "ADMIN"})
	})

	ctrl := NewController(svc, flashes)
	r.POST("/api/v1/events/:id/book", ctrl.BookEvent)
	r.POST("/events/:id/book", ctrl.BookEvent)
	r.GET("/api/v1/events/:id/availability", ctrl.GetAvailability)
	r.GET("/api/v1/bookings/:id", ctrl.GetBooking)
	r.POST("/bookings/:id/payment", ctrl.RecordPayment)
	r.PATCH("/api/v1/bookings/:id/cancel", ctrl.CancelBooking)
	return r
}

func TestController_BookEvent_Structured(t *testing.T) {
	eventID := uuid.New()
	bookingID := uuid.New()
	svc := new(MockService)
	svc.On("CreateBooking", mock.Anything, eventID, mock.MatchedBy(func(req CreateBookingRequest) bool {
		return req.NumberOfGuests == 2 && req.PaymentMethod == PayPartially && req.PartialPaymentAmount == 20000
	})).Return(&BookingResponse{ID: bookingID.String(), Reference: "BK-000001"}, nil)

	var captured error
	r := setupRouter(svc, &recordingFlash{}, &captured)

	body := `{"customerName":"Grace","customerEmail":"grace@example.com","numberOfGuests":2,"paymentMethod":"partial","partialPaymentAmount":20000}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/"+eventID.String()+"/book", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.NoError(t, captured)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Status string          `json:"status"`
		Data   BookingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "BK-000001", resp.Data.Reference)
	svc.AssertExpectations(t)
}

func TestController_BookEvent_InteractiveRedirectsWithFlash(t *testing.T) {
	eventID := uuid.New()
	bookingID := uuid.New()
	svc := new(MockService)
	svc.On("CreateBooking", mock.Anything, eventID, mock.Anything).
		Return(&BookingResponse{ID: bookingID.String(), Reference: "BK-000002"}, nil)

	flashes := &recordingFlash{}
	var captured error
	r := setupRouter(svc, flashes, &captured)

	form := url.Values{
		"customerName":   {"Grace"},
		"customerEmail":  {"grace@example.com"},
		"numberOfGuests": {"1"},
		"paymentMethod":  {"full"},
	}
	req := httptest.NewRequest(http.MethodPost, "/events/"+eventID.String()+"/book", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.NoError(t, captured)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/bookings/"+bookingID.String(), w.Header().Get("Location"))
	require.NotNil(t, flashes.last)
	msg, _ := flashes.last.Get("success")
	assert.Contains(t, msg, "BK-000002")
}

func TestController_BookEvent_ValidationFailure(t *testing.T) {
	svc := new(MockService)
	var captured error
	r := setupRouter(svc, nil, &captured)

	body := `{"customerName":"","customerEmail":"not-an-email","numberOfGuests":0,"paymentMethod":"partial"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/"+uuid.NewString()+"/book", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Error(t, captured)
	ce := apperrors.Classify(captured)
	assert.Equal(t, apperrors.KindValidation, ce.Kind)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, captured, &verr)
	for _, field := range []string{"customerName", "customerEmail", "numberOfGuests", "partialPaymentAmount"} {
		assert.NotEmpty(t, verr.Fields.FieldMessages(field), field)
	}
	svc.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestController_MalformedIDIsNotFound(t *testing.T) {
	svc := new(MockService)
	var captured error
	r := setupRouter(svc, nil, &captured)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/bookings/not-a-uuid", nil))
	assert.True(t, apperrors.IsRawHTTPStatus(captured, http.StatusNotFound))
}

func TestController_ServiceErrorIsRecorded(t *testing.T) {
	eventID := uuid.New()
	svc := new(MockService)
	svc.On("RemainingSeats", mock.Anything, eventID).Return(nil, apperrors.NotFound("Event not found"))

	var captured error
	r := setupRouter(svc, nil, &captured)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events/"+eventID.String()+"/availability", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.True(t, apperrors.IsRawHTTPStatus(captured, http.StatusNotFound))
}

func TestController_RecordPayment_Interactive(t *testing.T) {
	bookingID := uuid.New()
	svc := new(MockService)
	svc.On("ApplyPayment", mock.Anything, bookingID, RecordPaymentRequest{PaymentMethod: MethodCash, Amount: 1500}).
		Return(&PaymentResult{Payment: PaymentResponse{Reference: "PAY-000009"}}, nil)

	flashes := &recordingFlash{}
	var captured error
	r := setupRouter(svc, flashes, &captured)

	form := url.Values{"paymentMethod": {"cash"}, "amount": {"1500"}}
	req := httptest.NewRequest(http.MethodPost, "/bookings/"+bookingID.String()+"/payment", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.NoError(t, captured)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/bookings/"+bookingID.String(), w.Header().Get("Location"))
	svc.AssertExpectations(t)
}

func TestController_CancelBooking_WithoutBody(t *testing.T) {
	bookingID := uuid.New()
	svc := new(MockService)
	svc.On("CancelBooking", mock.Anything, bookingID, "", "staff-1").
		Return(&BookingResponse{ID: bookingID.String(), Status: StatusCancelled}, nil)

	var captured error
	r := setupRouter(svc, nil, &captured)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/"+bookingID.String()+"/cancel", nil))

	require.NoError(t, captured)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestController_RedirectTargetShowsFlash(t *testing.T) {
	eventID := uuid.New()
	bookingID := uuid.New()
	booking := &BookingResponse{ID: bookingID.String(), Reference: "BK-000004"}
	svc := new(MockService)
	svc.On("CreateBooking", mock.Anything, eventID, mock.Anything).Return(booking, nil)
	svc.On("GetBooking", mock.Anything, bookingID).Return(booking, nil)

	store := flash.NewStore(cache.NewMemory(), flash.Options{CookieName: "flash"})
	var captured error
	r := gin.New()
	r.Use(store.Middleware())
	r.Use(func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			captured = c.Errors.Last().Err
		}
	})
	ctrl := NewController(svc, store)
	r.POST("/events/:id/book", ctrl.BookEvent)
	r.GET("/bookings/:id", ctrl.ShowBooking)

	form := url.Values{
		"customerName":   {"Grace"},
		"customerEmail":  {"grace@example.com"},
		"numberOfGuests": {"1"},
		"paymentMethod":  {"full"},
	}
	req := httptest.NewRequest(http.MethodPost, "/events/"+eventID.String()+"/book", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.NoError(t, captured)
	require.Equal(t, http.StatusFound, w.Code)

	follow := httptest.NewRequest(http.MethodGet, w.Header().Get("Location"), nil)
	for _, ck := range w.Result().Cookies() {
		follow.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, follow)
	require.NoError(t, captured)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Booking BookingResponse   `json:"booking"`
			Flash   map[string]string `json:"flash"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "BK-000004", resp.Data.Booking.Reference)
	assert.Contains(t, resp.Data.Flash["success"], "BK-000004")
}
