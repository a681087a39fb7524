package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // keep a developer's .env out of the test

	cfg := Load()

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Server.MaxBatchRows)
	assert.Equal(t, 8, cfg.Server.MaxSessions)
	assert.True(t, cfg.Browser.Headless)
	assert.True(t, cfg.Browser.NoSandbox)
	assert.True(t, cfg.Browser.IgnoreCertErrors)
	assert.Equal(t, 1920, cfg.Browser.WindowWidth)
	assert.Equal(t, 1200, cfg.Browser.WindowHeight)
	assert.Equal(t, []string{"Image", "Font", "Media"}, cfg.Browser.BlockedResourceTypes)
	assert.Equal(t, "div.profile-badge", cfg.Counter.Selector)
	assert.Equal(t, 15*time.Second, cfg.Counter.Timeout)
	assert.Equal(t, "cloudskillsboost.google", cfg.Counter.DomainToken)
	assert.Equal(t, "Profile URL", cfg.Sheet.URLColumn)
	assert.Equal(t, "Name", cfg.Sheet.NameColumn)
	assert.Equal(t, "Badge Count", cfg.Sheet.CountColumn)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, time.Hour, cfg.RateLimit.IdleTTL)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BADGE_PORT", "9090")
	t.Setenv("BADGE_TIMEOUT", "2500")
	t.Setenv("BADGE_HEADLESS", "false")
	t.Setenv("BADGE_BLOCKED_RESOURCES", " Image , ,Stylesheet")
	t.Setenv("BADGE_API_KEYS", "a,b")
	t.Setenv("BADGE_RATE_RPS", "2.5")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2500*time.Millisecond, cfg.Counter.Timeout)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"Image", "Stylesheet"}, cfg.Browser.BlockedResourceTypes)
	assert.Equal(t, []string{"a", "b"}, cfg.Auth.APIKeys)
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 0.0001)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BADGE_PORT", "not-a-port")
	t.Setenv("BADGE_TIMEOUT", "soon")
	t.Setenv("BADGE_STEALTH", "maybe")

	cfg := Load()

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Counter.Timeout)
	assert.False(t, cfg.Browser.Stealth)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad selector", func(c *Config) { c.Counter.Selector = "div[" }},
		{"zero timeout", func(c *Config) { c.Counter.Timeout = 0 }},
		{"zero window", func(c *Config) { c.Browser.WindowWidth = 0 }},
		{"no batch rows", func(c *Config) { c.Server.MaxBatchRows = 0 }},
		{"auth without keys", func(c *Config) { c.Auth.Enabled = true; c.Auth.APIKeys = nil }},
	}

	t.Chdir(t.TempDir())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
