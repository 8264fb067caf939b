package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CSRF_SECRET", "s")
	t.Setenv("API_BASE_URL", "https://api.example.com/v1")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "backoffice_session", cfg.SessionCookie)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Zero(t, cfg.APITimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("CSRF_SECRET", "s")
	t.Setenv("API_BASE_URL", "not a url")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("API_TIMEOUT", "-1s")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("CSRF_SECRET", "")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestInTestMode(t *testing.T) {
	RefreshTestMode()
	assert.True(t, InTestMode())
}
