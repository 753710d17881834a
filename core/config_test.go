package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "BACKEND_URL", "NEXT_PUBLIC_BACKEND_URL", "BACKEND_TIMEOUT", "BREAKER_ENABLED", "LOG_LEVEL", "CONFIG_FILE", "AUTH_RATE_PER_MIN", "ALLOWED_ORIGINS", "TRUSTED_PROXIES"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "http://localhost:8000", cfg.BackendURL)
	assert.Zero(t, cfg.BackendTimeout)
	assert.False(t, cfg.BreakerEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30, cfg.AuthRatePerMin)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("BACKEND_URL", "")
	t.Setenv("NEXT_PUBLIC_BACKEND_URL", "https://api.miroteka.example")
	t.Setenv("BACKEND_TIMEOUT", "2500")
	t.Setenv("BREAKER_ENABLED", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("MIROTEKA_COOKIE", "token=abc")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.miroteka.example", cfg.BackendURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.BackendTimeout)
	assert.True(t, cfg.BreakerEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "token=abc", cfg.CookieString)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)

	gw := cfg.Gateway()
	assert.Equal(t, "https://api.miroteka.example", gw.Origin)
	assert.True(t, gw.BreakerEnabled)
}

func TestLoadConfigFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "web.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "8080"
backend_url: http://backend:8000
backend_timeout: 3s
allowed_origins:
  - https://miroteka.example
auth_rate_per_min: 5
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://backend:8000", cfg.BackendURL)
	assert.Equal(t, 3*time.Second, cfg.BackendTimeout)
	assert.Equal(t, []string{"https://miroteka.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 5, cfg.AuthRatePerMin)
	assert.Equal(t, "debug", cfg.LogLevel, "unset file keys keep the env value")
}

func TestLoadConfigFileErrors(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("port: [unterminated"), 0o600))
	t.Setenv("CONFIG_FILE", bad)
	_, err = Load()
	assert.Error(t, err)
}
