// Package validation binds request bodies and turns validator failures into
// field scoped *apperrors.ValidationError values.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"propdesk/internal/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator. Field names in errors follow the
// json tag, then the form tag, then the Go field name.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(fieldName)
	})
	return validate
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// Bind decodes the request into obj (JSON or form, by content type) and
// validates it. Decode failures and rule violations both come back as
// *apperrors.ValidationError; a body that is not decodable at all is a 400.
func Bind(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBind(obj); err != nil {
		return decodeError(c, obj, err)
	}
	return Struct(obj)
}

// Struct validates an already populated struct
func Struct(obj interface{}) error {
	err := Validator().Struct(obj)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return FromValidator(verrs)
	}
	return fmt.Errorf("validate %T: %w", obj, err)
}

// FromValidator converts validator errors into a ValidationError
func FromValidator(verrs validator.ValidationErrors) *apperrors.ValidationError {
	out := apperrors.NewValidationError()
	for _, fe := range verrs {
		out.AddField(fe.Field(), Message(fe))
	}
	return out
}

func decodeError(c *gin.Context, obj interface{}, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return apperrors.NewValidationError().
			AddField(field, fmt.Sprintf("The %s field must be of type %s.", humanize(field), typeErr.Type.String()))
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		if field, ok := formField(c, obj, numErr.Num); ok {
			return apperrors.NewValidationError().
				AddField(field, fmt.Sprintf("The %s must be a number.", humanize(field)))
		}
		return apperrors.NewValidationError().
			AddField("body", fmt.Sprintf("The value %q is not a valid number.", numErr.Num))
	}
	return apperrors.BadRequest("Invalid request body")
}

// formField finds the field of obj whose submitted form value is value.
// Form binding errors carry the rejected value but not the field name.
func formField(c *gin.Context, obj interface{}, value string) (string, bool) {
	if c.Request == nil || c.Request.Form == nil {
		return "", false
	}
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return "", false
	}

	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		key := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if key == "" {
			key = fld.Name
		}
		if key == "-" || !isNumeric(fld.Type) {
			continue
		}
		for _, submitted := range c.Request.Form[key] {
			if submitted == value {
				return fieldName(fld), true
			}
		}
	}
	return "", false
}

func isNumeric(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Message renders the human message for one failed rule
func Message(fe validator.FieldError) string {
	name := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "required_if":
		return fmt.Sprintf("The %s field is required for this selection.", name)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", name)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", name, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", name, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must be at least %s.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "uuid", "uuid4":
		return fmt.Sprintf("The %s must be a valid UUID.", name)
	}
	return fmt.Sprintf("The %s field is invalid.", name)
}

// humanize turns customerEmail or customer_email into "customer email"
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case r == '_' || r == '-':
			b.WriteByte(' ')
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
