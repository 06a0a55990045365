package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load("testdata/missing.env")
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE", "")
	t.Setenv("PORT", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("ENV", "")

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.False(t, cfg.Development())
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Store)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE", "memory")
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("AUTH_RATE_LIMIT_RPS", "0.5")
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")
	t.Setenv("ENV", "development")

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)
	assert.True(t, cfg.Development())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Store)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 0.5, cfg.RateLimit.RPS)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE", "mongo")
	_, err := Load("testdata/missing.env")
	require.Error(t, err)
}
