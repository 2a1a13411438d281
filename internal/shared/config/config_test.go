package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GIN_MODE", "release")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "/dashboard", cfg.Web.SafeRedirectPath)
	assert.Equal(t, "access_token", cfg.JWT.CookieName)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.Errors.ExposeDebug)
	assert.Contains(t, cfg.Database.DSN, "dbname=propdesk_db")
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	t.Setenv("ERROR_REPORT_TTL", "2h")
	t.Setenv("JWT_EXPIRES_IN", "60")
	t.Setenv("RATE_LIMIT_ENABLED", "nope")

	cfg := Load()

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Hour, cfg.Errors.ReportTTL)
	assert.Equal(t, time.Minute, cfg.JWT.JWTExpiresIn)
	assert.True(t, cfg.RateLimit.Enabled, "unparseable bool keeps the fallback")
	assert.True(t, cfg.Errors.ExposeDebug, "debug detail is on outside release mode")
}
