package errorhandling

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"propdesk/internal/apperrors"
	"propdesk/internal/errorreport"
	"propdesk/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Report(ctx context.Context, err error, rc errorreport.ReportContext) (string, error) {
	args := m.Called(ctx, err, rc)
	return args.String(0), args.Error(1)
}

type panickingReporter struct{}

func (panickingReporter) Report(context.Context, error, errorreport.ReportContext) (string, error) {
	panic("reporter exploded")
}

func newTestDispatcher(rep Reporter, exposeDebug bool) (*Dispatcher, *bytes.Buffer) {
	var buf bytes.Buffer
	d := NewDispatcher(rep, logger.NewWithWriter(&buf, "debug"), Options{
		SafeRedirectPath: "/dashboard",
		ExposeDebug:      exposeDebug,
	})
	return d, &buf
}

func TestDispatch_PageShortCircuit(t *testing.T) {
	d, _ := newTestDispatcher(nil, false)

	tests := []struct {
		err  error
		page string
	}{
		{apperrors.NotFound(""), PageNotFound},
		{apperrors.Forbidden(""), PageForbidden},
		{apperrors.NewHTTPError(http.StatusInternalServerError, ""), PageServer},
	}
	for _, tt := range tests {
		resp := d.Dispatch(context.Background(), tt.err, Request{Structured: false})
		assert.Equal(t, tt.page, resp.Page)
		assert.Nil(t, resp.Redirect)
	}

	// Structured callers get JSON for the same failures
	resp := d.Dispatch(context.Background(), apperrors.NotFound("Event not found"), Request{Structured: true})
	assert.Empty(t, resp.Page)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	code, _ := resp.Body.Get("error_code")
	assert.Equal(t, "HTTP_404", code)

	// Other statuses are not short-circuited
	resp = d.Dispatch(context.Background(), apperrors.NewHTTPError(http.StatusTooManyRequests, ""), Request{})
	assert.Empty(t, resp.Page)
	require.NotNil(t, resp.Redirect)
}

func TestDispatch_AuthorizationForbiddenIsNotAPage(t *testing.T) {
	d, _ := newTestDispatcher(nil, false)

	resp := d.Dispatch(context.Background(), apperrors.NewPermissionDenied("create-transactions"), Request{BackURL: "/bookings/1"})
	assert.Empty(t, resp.Page)
	require.NotNil(t, resp.Redirect)
	assert.Equal(t, "/dashboard", resp.Redirect.Target)
}

func TestDispatch_UnknownIsReported(t *testing.T) {
	rep := new(MockReporter)
	cause := errors.New("connection refused")
	rep.On("Report", mock.Anything, cause, mock.MatchedBy(func(rc errorreport.ReportContext) bool {
		return rc.UserID == "u-1" && rc.Method == "POST" && rc.URL == "/api/v1/events/1/book" && rc.Stack != ""
	})).Return("err-42", nil).Once()

	d, _ := newTestDispatcher(rep, false)
	resp := d.Dispatch(context.Background(), cause, Request{
		Structured: true, Method: "POST", URL: "/api/v1/events/1/book", UserID: "u-1",
	})

	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	id, _ := resp.Body.Get("error_id")
	assert.Equal(t, "err-42", id)
	_, hasDebug := resp.Body.Get("debug")
	assert.False(t, hasDebug)
	rep.AssertExpectations(t)
}

func TestDispatch_NonUnknownIsNotReported(t *testing.T) {
	rep := new(MockReporter)
	d, buf := newTestDispatcher(rep, false)

	resp := d.Dispatch(context.Background(),
		apperrors.NewBusinessError("PAYMENT_EXCEEDS_BALANCE", "amount exceeds remaining balance"),
		Request{Structured: true, Method: "POST", URL: "/api/v1/bookings/1/payment"})

	assert.Equal(t, http.StatusBadRequest, resp.Status)
	rep.AssertNotCalled(t, "Report", mock.Anything, mock.Anything, mock.Anything)
	assert.Contains(t, buf.String(), "PAYMENT_EXCEEDS_BALANCE")
}

func TestDispatch_DebugDetailOutsideProduction(t *testing.T) {
	rep := new(MockReporter)
	rep.On("Report", mock.Anything, mock.Anything, mock.Anything).Return("err-1", nil)

	d, _ := newTestDispatcher(rep, true)
	resp := d.Dispatch(context.Background(), errors.New("nil map write"), Request{Structured: true})

	dbg, _ := resp.Body.Get("debug")
	assert.Equal(t, "nil map write", dbg)
}

func TestDispatch_ReporterFailureStillRenders(t *testing.T) {
	rep := new(MockReporter)
	rep.On("Report", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("redis down"))

	d, buf := newTestDispatcher(rep, false)
	resp := d.Dispatch(context.Background(), errors.New("boom"), Request{Structured: true})

	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	_, hasID := resp.Body.Get("error_id")
	assert.False(t, hasID)
	assert.Contains(t, buf.String(), "boom")
}

func TestDispatch_NeverPanics(t *testing.T) {
	d, _ := newTestDispatcher(panickingReporter{}, false)

	var resp Response
	assert.NotPanics(t, func() {
		resp = d.Dispatch(context.Background(), errors.New("boom"), Request{Structured: false})
	})
	assert.Equal(t, FallbackResponse(), resp)
	assert.Equal(t, FallbackJSON, marshal(t, resp.Body))
}

func TestDispatch_NilError(t *testing.T) {
	d, _ := newTestDispatcher(nil, false)
	resp := d.Dispatch(context.Background(), nil, Request{Structured: true})
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
}
