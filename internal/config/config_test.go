package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USERNAME", "complexcare")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_DATABASE", "complexcare")
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.DemoMode)
	assert.Equal(t, 168*time.Hour, cfg.DMDCacheTTL)
	assert.Equal(t, time.Hour, cfg.ReminderInterval)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Nil(t, cfg.OAuthConfig())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("CORS_ORIGINS", "https://app.complexcare.app, https://admin.complexcare.app")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.DemoMode)
	assert.Len(t, cfg.CORSOrigins, 2)
	require.NotNil(t, cfg.OAuthConfig())
	assert.Equal(t, "id", cfg.OAuthConfig().ClientID)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_HOST", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_HOST")
}

func TestLoadInvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("DMD_CACHE_TTL", "weekly")

	_, err := Load()
	assert.ErrorContains(t, err, "DMD_CACHE_TTL")
}
