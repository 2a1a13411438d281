package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of error categories.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthorization
	KindValidation
	KindBusinessLogic
	KindHTTPStatus
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindBusinessLogic:
		return "business_logic"
	case KindHTTPStatus:
		return "http_status"
	case KindUnknown:
		return "unknown"
	}
	return "unknown"
}

// GenericMessage is shown to callers for Unknown failures.
const GenericMessage = "Something went wrong on our side. Please try again later."

// ClassifiedError is the normalized form of any failure.
type ClassifiedError struct {
	Kind       Kind
	HTTPStatus int
	Message    string
	Code       string
	Context    *Context
	// Cause is the original failure. It is for server side logging only.
	Cause error
}

// Classify maps err onto exactly one Kind. It never panics and never
// returns an undefined kind.
func Classify(err error) (ce ClassifiedError) {
	defer func() {
		// A misbehaving Unwrap, As or HTTPStatus method must not take the
		// error path down with it.
		if r := recover(); r != nil {
			ce = unknown(fmt.Errorf("classify panicked: %v (original: %v)", r, err))
		}
	}()

	var (
		authErr  *AuthorizationError
		valErr   *ValidationError
		bizErr   *BusinessError
		coderErr StatusCoder
	)

	switch {
	case err == nil:
		return unknown(errors.New("nil error classified"))

	case errors.As(err, &authErr) && authErr != nil:
		status := http.StatusForbidden
		if authErr.Status != 0 {
			status = authErr.Status
		}
		msg := authErr.Message
		if msg == "" {
			msg = "This action is unauthorized."
		}
		return ClassifiedError{
			Kind:       KindAuthorization,
			HTTPStatus: status,
			Message:    msg,
			Code:       CodeAuthorization,
			Context: NewContext().
				Set("required_permission", authErr.RequiredPermission).
				Set("required_role", authErr.RequiredRole),
			Cause: err,
		}

	case errors.As(err, &valErr) && valErr != nil:
		fields := valErr.Fields
		if fields == nil {
			fields = NewContext()
		}
		msg := valErr.Message
		if msg == "" {
			msg = "The given data was invalid."
		}
		return ClassifiedError{
			Kind:       KindValidation,
			HTTPStatus: http.StatusUnprocessableEntity,
			Message:    msg,
			Code:       CodeValidation,
			Context:    NewContext().Set("errors", fields),
			Cause:      err,
		}

	case errors.As(err, &bizErr) && bizErr != nil:
		status := bizErr.Status
		if status == 0 {
			status = http.StatusBadRequest
		}
		ctx := bizErr.Context
		if ctx == nil {
			ctx = NewContext()
		}
		return ClassifiedError{
			Kind:       KindBusinessLogic,
			HTTPStatus: status,
			Message:    bizErr.Message,
			Code:       bizErr.Code,
			Context:    ctx,
			Cause:      err,
		}

	case errors.As(err, &coderErr) && coderErr != nil:
		status := coderErr.HTTPStatus()
		if status < 100 || status > 599 {
			return unknown(err)
		}
		msg := http.StatusText(status)
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.Message != "" {
			msg = httpErr.Message
		}
		return ClassifiedError{
			Kind:       KindHTTPStatus,
			HTTPStatus: status,
			Message:    msg,
			Code:       fmt.Sprintf("HTTP_%d", status),
			Context:    NewContext(),
			Cause:      err,
		}
	}

	return unknown(err)
}

func unknown(err error) ClassifiedError {
	return ClassifiedError{
		Kind:       KindUnknown,
		HTTPStatus: http.StatusInternalServerError,
		Message:    GenericMessage,
		Code:       CodeInternal,
		Context:    NewContext(),
		Cause:      err,
	}
}

// IsRawHTTPStatus reports whether err classifies as an HTTPStatus failure
// with the given status.
func IsRawHTTPStatus(err error, status int) bool {
	ce := Classify(err)
	return ce.Kind == KindHTTPStatus && ce.HTTPStatus == status
}
