package errorreport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"propdesk/internal/apperrors"
	"propdesk/internal/shared/constants"
	"propdesk/pkg/cache"
	"propdesk/pkg/logger"

	"github.com/google/uuid"
)

// ReportContext is the request metadata captured with an unexpected failure
type ReportContext struct {
	UserID string
	Method string
	URL    string
	Stack  string
}

// Report is what operators see when they look an error id up
type Report struct {
	ID         string    `json:"id"`
	Message    string    `json:"message"`
	ErrorType  string    `json:"error_type"`
	UserID     string    `json:"user_id,omitempty"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	Stack      string    `json:"stack,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Reporter logs unexpected failures and keeps them retrievable by id
type Reporter struct {
	cache  cache.Service
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time
	newID  func() string
}

func NewReporter(c cache.Service, ttl time.Duration, log *logger.Logger) *Reporter {
	return &Reporter{
		cache:  c,
		ttl:    ttl,
		logger: log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Report records err and returns the opaque id shown to the caller.
// The id is returned even when the store write fails; the log line still
// carries it.
func (r *Reporter) Report(ctx context.Context, err error, rc ReportContext) (string, error) {
	id := r.newID()

	msg := "<nil>"
	if err != nil {
		msg = err.Error()
	}

	rep := Report{
		ID:         id,
		Message:    msg,
		ErrorType:  rootType(err),
		UserID:     rc.UserID,
		Method:     rc.Method,
		URL:        rc.URL,
		Stack:      rc.Stack,
		OccurredAt: r.now().UTC(),
	}

	r.logger.ErrorContext(ctx, "Unhandled error reported",
		"error_id", id,
		"error", msg,
		"error_type", rep.ErrorType,
		"user_id", rc.UserID,
		"method", rc.Method,
		"url", rc.URL,
		"stack", rc.Stack,
	)

	if setErr := r.cache.Set(ctx, constants.BuildErrorReportKey(id), rep, r.ttl); setErr != nil {
		return id, fmt.Errorf("store error report %s: %w", id, setErr)
	}
	return id, nil
}

// rootType names the innermost wrapped error type
func rootType(err error) string {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return fmt.Sprintf("%T", err)
		}
		err = inner
	}
}

// Get returns a stored report
func (r *Reporter) Get(ctx context.Context, id string) (*Report, error) {
	var rep Report
	if err := r.cache.Get(ctx, constants.BuildErrorReportKey(id), &rep); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, apperrors.NotFound("Error report not found")
		}
		return nil, fmt.Errorf("load error report %s: %w", id, err)
	}
	return &rep, nil
}
