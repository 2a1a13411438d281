package validation

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"propdesk/internal/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	CustomerName  string `json:"customerName" form:"customerName" validate:"required,min=2"`
	CustomerEmail string `json:"customerEmail" form:"customerEmail" validate:"required,email"`
	Guests        int    `json:"numberOfGuests" form:"numberOfGuests" validate:"gte=1"`
	Method        string `json:"paymentMethod" form:"paymentMethod" validate:"required,oneof=full partial"`
	Partial       int64  `json:"partialPaymentAmount" form:"partialPaymentAmount" validate:"required_if=Method partial,omitempty,gt=0"`
}

func newContext(t *testing.T, contentType, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/events/1/book", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", contentType)
	return c
}

func TestBind_JSONValid(t *testing.T) {
	c := newContext(t, "application/json",
		`{"customerName":"Ann","customerEmail":"ann@example.com","numberOfGuests":2,"paymentMethod":"full"}`)

	var req sampleRequest
	require.NoError(t, Bind(c, &req))
	assert.Equal(t, 2, req.Guests)
}

func TestBind_FieldErrorsUseJSONNames(t *testing.T) {
	c := newContext(t, "application/json",
		`{"customerName":"A","customerEmail":"nope","numberOfGuests":0,"paymentMethod":"partial"}`)

	var req sampleRequest
	err := Bind(c, &req)
	require.Error(t, err)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"The customer name must be at least 2 characters."}, verr.Fields.FieldMessages("customerName"))
	assert.Equal(t, []string{"The customer email must be a valid email address."}, verr.Fields.FieldMessages("customerEmail"))
	assert.Equal(t, []string{"The number of guests must be at least 1."}, verr.Fields.FieldMessages("numberOfGuests"))
	assert.Equal(t, []string{"The partial payment amount field is required for this selection."}, verr.Fields.FieldMessages("partialPaymentAmount"))
}

func TestBind_Form(t *testing.T) {
	form := url.Values{
		"customerName":   {"Bob"},
		"customerEmail":  {"bob@example.com"},
		"numberOfGuests": {"3"},
		"paymentMethod":  {"bogus"},
	}
	c := newContext(t, "application/x-www-form-urlencoded", form.Encode())

	var req sampleRequest
	err := Bind(c, &req)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"The selected payment method is invalid."}, verr.Fields.FieldMessages("paymentMethod"))
	assert.Equal(t, 1, verr.Fields.Len())
}

func TestBind_WrongJSONType(t *testing.T) {
	c := newContext(t, "application/json", `{"numberOfGuests":"many"}`)

	var req sampleRequest
	err := Bind(c, &req)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Fields.FieldMessages("numberOfGuests"))
}

func TestBind_FormNumberSyntax(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "guests", body: "customerName=Ann&numberOfGuests=abc", field: "numberOfGuests"},
		{name: "partial amount", body: "paymentMethod=partial&partialPaymentAmount=12.50", field: "partialPaymentAmount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newContext(t, "application/x-www-form-urlencoded", tt.body)

			var req sampleRequest
			err := Bind(c, &req)

			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Fields.FieldMessages(tt.field))
			assert.Empty(t, verr.Fields.FieldMessages("body"))
		})
	}
}

func TestBind_FormNumberSyntaxOnTextField(t *testing.T) {
	c := newContext(t, "application/x-www-form-urlencoded", "numberOfGuests=abc")
	require.NoError(t, c.Request.ParseForm())

	// a matching value on a non-numeric field is never blamed
	_, ok := formField(c, &struct {
		Name string `form:"numberOfGuests"`
	}{}, "abc")
	assert.False(t, ok)
}

func TestBind_MalformedBody(t *testing.T) {
	c := newContext(t, "application/json", `{"customerName":`)

	var req sampleRequest
	err := Bind(c, &req)
	assert.True(t, apperrors.IsRawHTTPStatus(err, http.StatusBadRequest))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "customer email", humanize("customerEmail"))
	assert.Equal(t, "password confirmation", humanize("password_confirmation"))
	assert.Equal(t, "amount", humanize("amount"))
}
