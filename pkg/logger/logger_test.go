package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, getLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, getLogLevel("warning"))
	assert.Equal(t, slog.LevelError, getLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, getLogLevel(""))
}

func TestLogHTTPError_LevelFollowsStatus(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")

	l.LogHTTPError(context.Background(), "POST", "/api/v1/bookings/x/payment",
		errors.New("boom"), 500, "unknown", "INTERNAL_ERROR")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "INTERNAL_ERROR", entry["error_code"])
	assert.Equal(t, float64(500), entry["status"])

	buf.Reset()
	l.LogHTTPError(context.Background(), "POST", "/x", errors.New("nope"), 422, "validation", "VALIDATION_ERROR")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
}

func TestLogHTTPError_NilError(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")
	l.LogHTTPError(context.Background(), "GET", "/", nil, 404, "http_status", "HTTP_404")
	assert.Contains(t, buf.String(), "<nil>")
}
