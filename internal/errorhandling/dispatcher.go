package errorhandling

import (
	"context"
	"net/http"
	"net/url"
	"runtime/debug"

	"propdesk/internal/apperrors"
	"propdesk/internal/errorreport"
	"propdesk/pkg/logger"
	"propdesk/pkg/metrics"
)

// FallbackJSON is written when rendering itself fails
const FallbackJSON = `{"error":true,"message":"Server Error","error_code":"INTERNAL_ERROR"}`

// Pages with a dedicated rendering for browser callers
const (
	PageForbidden = "403"
	PageNotFound  = "404"
	PageServer    = "500"
)

var pageStatuses = map[int]string{
	http.StatusForbidden:           PageForbidden,
	http.StatusNotFound:            PageNotFound,
	http.StatusInternalServerError: PageServer,
}

// Reporter hands Unknown failures to operators and returns a correlation id
type Reporter interface {
	Report(ctx context.Context, err error, rc errorreport.ReportContext) (string, error)
}

// Request is the failing request as seen by the dispatcher
type Request struct {
	Structured bool
	Method     string
	URL        string
	BackURL    string
	Input      url.Values
	UserID     string
	// Stack is set when the failure was a recovered panic
	Stack string
}

// Dispatcher turns any failure into exactly one Response
type Dispatcher struct {
	formatter   *Formatter
	reporter    Reporter
	logger      *logger.Logger
	exposeDebug bool
}

// Options configures a Dispatcher
type Options struct {
	SafeRedirectPath string
	// ExposeDebug adds the cause message to structured Unknown bodies
	ExposeDebug bool
}

func NewDispatcher(reporter Reporter, log *logger.Logger, opts Options) *Dispatcher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Dispatcher{
		formatter:   NewFormatter(opts.SafeRedirectPath),
		reporter:    reporter,
		logger:      log,
		exposeDebug: opts.ExposeDebug,
	}
}

// FallbackResponse is the minimal 500 used when dispatching fails
func FallbackResponse() Response {
	return Response{
		Status: http.StatusInternalServerError,
		Body: apperrors.NewContext().
			Set("error", true).
			Set("message", "Server Error").
			Set("error_code", apperrors.CodeInternal),
	}
}

// Dispatch classifies err and decides how to render it. It never panics.
func (d *Dispatcher) Dispatch(ctx context.Context, err error, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "error dispatch panicked", "panic", r, "stack", string(debug.Stack()))
			resp = FallbackResponse()
		}
	}()

	ce := apperrors.Classify(err)
	metrics.ErrorsTotal.WithLabelValues(ce.Kind.String()).Inc()

	if !req.Structured && ce.Kind == apperrors.KindHTTPStatus {
		if page, ok := pageStatuses[ce.HTTPStatus]; ok {
			d.log(ctx, req, ce)
			return Response{Status: ce.HTTPStatus, Page: page}
		}
	}

	origin := Origin{BackURL: req.BackURL, Input: req.Input}

	if ce.Kind == apperrors.KindUnknown {
		origin.ErrorID = d.report(ctx, err, req)
		if d.exposeDebug && ce.Cause != nil {
			origin.Debug = ce.Cause.Error()
		}
		if origin.ErrorID == "" {
			d.log(ctx, req, ce)
		}
	} else {
		d.log(ctx, req, ce)
	}

	return d.formatter.Format(ce, req.Structured, origin)
}

func (d *Dispatcher) report(ctx context.Context, err error, req Request) string {
	if d.reporter == nil {
		return ""
	}
	stack := req.Stack
	if stack == "" {
		stack = string(debug.Stack())
	}
	id, repErr := d.reporter.Report(ctx, err, errorreport.ReportContext{
		UserID: req.UserID,
		Method: req.Method,
		URL:    req.URL,
		Stack:  stack,
	})
	if repErr != nil {
		d.logger.WarnContext(ctx, "error report not stored", "error", repErr, "error_id", id)
	}
	return id
}

func (d *Dispatcher) log(ctx context.Context, req Request, ce apperrors.ClassifiedError) {
	d.logger.LogHTTPError(ctx, req.Method, req.URL, ce.Cause, ce.HTTPStatus, ce.Kind.String(), ce.Code)
}
