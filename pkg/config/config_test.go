package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MERIDIAN_DB_DSN", "postgres://localhost/meridian?sslmode=disable")
	t.Setenv("MERIDIAN_JWT_SECRET", "test-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("MERIDIAN_PORT", "3000")
	t.Setenv("MERIDIAN_DB_DRIVER", "sqlite3")
	t.Setenv("MERIDIAN_TOKEN_TTL", "30m")
	t.Setenv("MERIDIAN_REDIS_DB", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestValidateFailures(t *testing.T) {
	t.Run("missing DSN", func(t *testing.T) {
		t.Setenv("MERIDIAN_JWT_SECRET", "s")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DSN")
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("MERIDIAN_DB_DSN", "file:test.db")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT secret")
	})

	t.Run("unknown driver", func(t *testing.T) {
		setRequired(t)
		t.Setenv("MERIDIAN_DB_DRIVER", "oracle")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid database driver")
	})

	t.Run("port clash", func(t *testing.T) {
		setRequired(t)
		t.Setenv("MERIDIAN_PORT", "8080")
		t.Setenv("MERIDIAN_HEALTH_PORT", "8080")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be different")
	})
}
