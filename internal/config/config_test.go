package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 3600, cfg.Auth.SessionDuration)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL())
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Same(t, cfg, Get())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORTAL_SERVER_PORT", "9090")
	t.Setenv("PORTAL_DATABASE_DRIVER", "sqlite")
	t.Setenv("PORTAL_AUTH_SESSION_DURATION", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 2*time.Minute, cfg.Auth.SessionTTL())
}

func TestLoad_ReleaseRequiresSecret(t *testing.T) {
	t.Setenv("PORTAL_SERVER_MODE", "release")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_secret")

	t.Setenv("PORTAL_AUTH_SESSION_SECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Server.IsRelease())
}

func TestValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "oracle"},
		Auth:     AuthConfig{SessionDuration: 60},
	}
	assert.Error(t, cfg.Validate())
}
