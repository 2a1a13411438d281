package reqctx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestWantsStructuredResponse(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		headers map[string]string
		want    bool
	}{
		{name: "browser form post", path: "/bookings/1/payment", headers: map[string]string{"Accept": "text/html,application/xhtml+xml"}, want: false},
		{name: "no headers", path: "/events/1/book", want: false},
		{name: "accept json", path: "/bookings/1/payment", headers: map[string]string{"Accept": "application/json"}, want: true},
		{name: "accept vendor json", path: "/bookings/1", headers: map[string]string{"Accept": "application/vnd.api+json; charset=utf-8"}, want: true},
		{name: "accept list with json", path: "/x", headers: map[string]string{"Accept": "text/html, application/json;q=0.9"}, want: true},
		{name: "xhr", path: "/x", headers: map[string]string{"X-Requested-With": "XMLHttpRequest"}, want: true},
		{name: "api prefix", path: "/api/v1/bookings/1", headers: map[string]string{"Accept": "text/html"}, want: true},
		{name: "api lookalike", path: "/apiary", want: false},
		{name: "garbage accept", path: "/x", headers: map[string]string{"Accept": ";;;"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, WantsStructuredResponse(req))
		})
	}

	assert.False(t, WantsStructuredResponse(nil))
}

func TestCurrentUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := CurrentUser(c)
	assert.False(t, ok)

	SetUser(c, User{ID: "u-1", Email: "a@b.c", Role: "ACCOUNTANT", Permissions: []string{"create-transactions"}})

	u, ok := CurrentUser(c)
	assert.True(t, ok)
	assert.Equal(t, "u-1", u.ID)
	assert.True(t, u.HasPermission("create-transactions"))
	assert.False(t, u.HasPermission("cancel-bookings"))
}
