package errorhandling

import (
	"net/http"
	"net/url"
	"sort"

	"propdesk/internal/apperrors"
)

// Response is the rendering decision for one failure. Exactly one of Body,
// Redirect or Page is set.
type Response struct {
	Status   int
	Body     *apperrors.Context
	Redirect *Redirect
	Page     string
}

// Redirect tells the transport to send the browser to Target and make Flash
// readable exactly once on the next request.
type Redirect struct {
	Target string
	Flash  *apperrors.Context
}

// Origin is what the dispatcher knows about the failing request beyond the
// error itself.
type Origin struct {
	// BackURL is where an interactive caller came from
	BackURL string
	// Input is the submitted form, echoed back for re-display
	Input url.Values
	// ErrorID correlates an Unknown failure with its server side report
	ErrorID string
	// Debug is the raw cause, only set outside production
	Debug string
}

// secretFields never make it into old_input
var secretFields = map[string]bool{
	"password":              true,
	"password_confirmation": true,
	"token":                 true,
	"_token":                true,
}

// DefaultSafeRedirectPath is the landing page used when none is configured
const DefaultSafeRedirectPath = "/dashboard"

// Formatter builds responses from classified errors. It performs no I/O.
type Formatter struct {
	safeRedirectPath string
}

func NewFormatter(safeRedirectPath string) *Formatter {
	if safeRedirectPath == "" {
		safeRedirectPath = DefaultSafeRedirectPath
	}
	return &Formatter{safeRedirectPath: safeRedirectPath}
}

// Format renders ce as a JSON body for structured callers or as a redirect
// with flash data for interactive ones.
func (f *Formatter) Format(ce apperrors.ClassifiedError, structured bool, origin Origin) Response {
	if structured {
		return Response{Status: ce.HTTPStatus, Body: f.body(ce, origin)}
	}
	return Response{Status: http.StatusFound, Redirect: f.redirect(ce, origin)}
}

func (f *Formatter) body(ce apperrors.ClassifiedError, origin Origin) *apperrors.Context {
	body := apperrors.NewContext().
		Set("error", true).
		Set("message", ce.Message).
		Set("error_code", ce.Code)

	switch ce.Kind {
	case apperrors.KindValidation:
		body.Set("errors", contextValue(ce.Context, "errors"))
	case apperrors.KindBusinessLogic:
		body.Set("context", nonNil(ce.Context))
	case apperrors.KindAuthorization:
		body.Set("required_permission", stringValue(ce.Context, "required_permission"))
		body.Set("required_role", stringValue(ce.Context, "required_role"))
	case apperrors.KindUnknown:
		if origin.ErrorID != "" {
			body.Set("error_id", origin.ErrorID)
		}
		if origin.Debug != "" {
			body.Set("debug", origin.Debug)
		}
	case apperrors.KindHTTPStatus:
	}
	return body
}

func (f *Formatter) redirect(ce apperrors.ClassifiedError, origin Origin) *Redirect {
	target := origin.BackURL
	if target == "" {
		target = "/"
	}

	flash := apperrors.NewContext().
		Set("error", ce.Message).
		Set("error_code", ce.Code)

	switch ce.Kind {
	case apperrors.KindAuthorization:
		// "back" may be the very page the caller cannot see
		target = f.safeRedirectPath
	case apperrors.KindValidation:
		flash.Set("errors", contextValue(ce.Context, "errors"))
		flash.Set("old_input", oldInput(origin.Input))
	case apperrors.KindBusinessLogic:
		flash.Set("error_context", nonNil(ce.Context))
		flash.Set("old_input", oldInput(origin.Input))
	case apperrors.KindUnknown:
		if origin.ErrorID != "" {
			flash.Set("error_id", origin.ErrorID)
		}
	case apperrors.KindHTTPStatus:
	}

	return &Redirect{Target: target, Flash: flash}
}

// oldInput echoes submitted values minus secrets. Single values are
// flattened; repeated keys stay lists.
func oldInput(input url.Values) *apperrors.Context {
	out := apperrors.NewContext()
	keys := make([]string, 0, len(input))
	for k := range input {
		if !secretFields[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		vals := input[k]
		switch len(vals) {
		case 0:
			out.Set(k, "")
		case 1:
			out.Set(k, vals[0])
		default:
			out.Set(k, append([]string(nil), vals...))
		}
	}
	return out
}

func contextValue(ctx *apperrors.Context, key string) *apperrors.Context {
	v, _ := ctx.Get(key)
	if c, ok := v.(*apperrors.Context); ok && c != nil {
		return c
	}
	return apperrors.NewContext()
}

func stringValue(ctx *apperrors.Context, key string) string {
	v, _ := ctx.Get(key)
	s, _ := v.(string)
	return s
}

func nonNil(ctx *apperrors.Context) *apperrors.Context {
	if ctx == nil {
		return apperrors.NewContext()
	}
	return ctx
}
