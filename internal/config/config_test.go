package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "BASE_URL", "DB_DRIVER", "CACHE_TTL_SECONDS", "SALES_SYNC_MODE", "CORS_ORIGINS", "PHONE_REGION", "SESSION_IDLE_MINUTES"} {
		t.Setenv(k, "")
	}

	cfg, _ := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 300*time.Second, cfg.CacheTTL)
	assert.Equal(t, "insert-only", cfg.SalesSyncMode)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, "BD", cfg.PhoneRegion)
	assert.Equal(t, time.Hour, cfg.SessionIdleTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("ALLOW_REGISTRATION", "true")
	t.Setenv("SALES_SYNC_MODE", "crud")
	t.Setenv("SESSION_IDLE_MINUTES", "15")

	cfg, _ := Load()

	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.AllowRegistration)
	assert.Equal(t, "crud", cfg.SalesSyncMode)
	assert.Equal(t, 15*time.Minute, cfg.SessionIdleTTL)
}

func TestValidate(t *testing.T) {
	cfg := &Config{DBDriver: "sqlite"}
	require.Error(t, cfg.Validate(), "missing secret")

	cfg.JWTSecret = "s"
	require.NoError(t, cfg.Validate())

	cfg.DBDriver = "mysql"
	require.Error(t, cfg.Validate(), "mysql needs a DSN")

	cfg.DBDriver = "postgres"
	require.Error(t, cfg.Validate())
}

func TestNewLogger_Level(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("nonsense").GetLevel())
}
