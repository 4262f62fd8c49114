package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "auto", cfg.Backend)
	assert.True(t, cfg.Watch)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogDev)
	assert.Equal(t, 500*time.Millisecond, cfg.ReconnectMin)
	assert.Equal(t, 30*time.Second, cfg.ReconnectMax)
	assert.Zero(t, cfg.ReconnectAttempts)
	assert.Zero(t, cfg.RenameRate)
	assert.Empty(t, cfg.MetricsAddr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"WSNAMER_BACKEND":            "hyprland",
		"WSNAMER_CONFIG":             "/tmp/symbols.toml",
		"WSNAMER_WATCH":              "false",
		"WSNAMER_LOG_LEVEL":          "debug",
		"WSNAMER_LOG_DEV":            "true",
		"WSNAMER_RECONNECT_MIN":      "1s",
		"WSNAMER_RECONNECT_MAX":      "1m",
		"WSNAMER_RECONNECT_ATTEMPTS": "5",
		"WSNAMER_RENAME_RATE":        "2.5",
		"WSNAMER_RENAME_BURST":       "4",
		"WSNAMER_METRICS_ADDR":       "127.0.0.1:9100",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "hyprland", cfg.Backend)
	assert.Equal(t, "/tmp/symbols.toml", cfg.SymbolsPath)
	assert.False(t, cfg.Watch)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogDev)
	assert.Equal(t, time.Second, cfg.ReconnectMin)
	assert.Equal(t, time.Minute, cfg.ReconnectMax)
	assert.Equal(t, 5, cfg.ReconnectAttempts)
	assert.Equal(t, 2.5, cfg.RenameRate)
	assert.Equal(t, 4, cfg.RenameBurst)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unparseable duration", env: map[string]string{"WSNAMER_RECONNECT_MIN": "soon"}},
		{name: "max below min", env: map[string]string{"WSNAMER_RECONNECT_MIN": "10s", "WSNAMER_RECONNECT_MAX": "1s"}},
		{name: "negative rate", env: map[string]string{"WSNAMER_RENAME_RATE": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
