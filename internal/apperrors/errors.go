package apperrors

import (
	"fmt"
	"net/http"
)

// Machine readable codes for the fixed kinds.
const (
	CodeAuthorization = "AUTHORIZATION_ERROR"
	CodeValidation    = "VALIDATION_ERROR"
	CodeInternal      = "INTERNAL_ERROR"
)

// AuthorizationError signals that the caller lacks a permission or role.
type AuthorizationError struct {
	Message            string
	RequiredPermission string
	RequiredRole       string
	// Status overrides the default 403 when non-zero.
	Status int
}

// NewPermissionDenied builds an AuthorizationError for a missing permission.
func NewPermissionDenied(permission string) *AuthorizationError {
	return &AuthorizationError{
		Message:            "You do not have permission to perform this action.",
		RequiredPermission: permission,
	}
}

// NewRoleRequired builds an AuthorizationError for a missing role.
func NewRoleRequired(role string) *AuthorizationError {
	return &AuthorizationError{
		Message:      "This action requires the " + role + " role.",
		RequiredRole: role,
	}
}

func (e *AuthorizationError) Error() string {
	switch {
	case e.RequiredPermission != "":
		return fmt.Sprintf("authorization denied: missing permission %q", e.RequiredPermission)
	case e.RequiredRole != "":
		return fmt.Sprintf("authorization denied: missing role %q", e.RequiredRole)
	}
	return "authorization denied"
}

// ValidationError carries field scoped input errors.
type ValidationError struct {
	Message string
	Fields  *Context
}

// NewValidationError creates an empty ValidationError ready for AddField calls.
func NewValidationError() *ValidationError {
	return &ValidationError{
		Message: "The given data was invalid.",
		Fields:  NewContext(),
	}
}

// AddField records msg against field.
func (e *ValidationError) AddField(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = NewContext()
	}
	e.Fields.AddFieldError(field, msg)
	return e
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", e.Fields.Len())
}

// BusinessError signals a violated domain rule.
type BusinessError struct {
	Code    string
	Message string
	Context *Context
	// Status defaults to 400 when zero.
	Status int
}

// NewBusinessError creates a BusinessError with the default 400 status.
func NewBusinessError(code, message string) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Context: NewContext(),
		Status:  http.StatusBadRequest,
	}
}

// With adds a context entry.
func (e *BusinessError) With(key string, value interface{}) *BusinessError {
	if e.Context == nil {
		e.Context = NewContext()
	}
	e.Context.Set(key, value)
	return e
}

// WithStatus overrides the HTTP status.
func (e *BusinessError) WithStatus(status int) *BusinessError {
	e.Status = status
	return e
}

func (e *BusinessError) Error() string {
	return e.Code + ": " + e.Message
}

// Is matches another BusinessError with the same code, so sentinel style
// comparisons work with errors.Is.
func (e *BusinessError) Is(target error) bool {
	t, ok := target.(*BusinessError)
	return ok && t.Code == e.Code
}

// HTTPError is a transport level failure with an explicit status code.
type HTTPError struct {
	Status  int
	Message string
}

// NewHTTPError creates an HTTPError. An empty message falls back to the status text.
func NewHTTPError(status int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: message}
}

// NotFound is the 404 HTTPError.
func NotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

// Unauthorized is the 401 HTTPError.
func Unauthorized(message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message)
}

// Forbidden is the 403 HTTPError.
func Forbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message)
}

// BadRequest is the 400 HTTPError.
func BadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// HTTPStatus implements StatusCoder.
func (e *HTTPError) HTTPStatus() int {
	return e.Status
}

// StatusCoder is implemented by failures that carry their own HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}
