package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-bytes-long"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load([]string{"-s", testSecret})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "securenotes.db", cfg.DatabasePath)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5, cfg.LoginRateLimit)
	assert.Equal(t, 100, cfg.APIRateLimit)
}

func TestLoad_MissingSecret(t *testing.T) {
	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret")
}

func TestLoad_EnvOverlay(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_FlagsWinOverEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("SERVER_ADDR", ":9090")

	cfg, err := Load([]string{"-a", ":7070"})
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr)
}

func TestLoad_InvalidEnvDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ACCESS_TOKEN_TTL", "not-a-duration")

	_, err := Load(nil)
	assert.Error(t, err)
}

func TestValidate_TTLOrdering(t *testing.T) {
	cfg := &Config{}
	cfg.loadDefaults()
	cfg.JWTSecret = testSecret

	// refresh TTL должен превышать access TTL
	cfg.AccessTokenTTL = time.Hour
	cfg.RefreshTokenTTL = time.Minute

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh token TTL")
}
