package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "WSNAMER"

// Config holds the process settings. Symbol tables live in a separate file,
// see LoadSymbols.
type Config struct {
	// Backend is auto, sway or hyprland.
	Backend string `envconfig:"BACKEND" default:"auto"`
	// SymbolsPath overrides symbol file discovery.
	SymbolsPath string `envconfig:"CONFIG"`
	Watch       bool   `envconfig:"WATCH" default:"true"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogDev   bool   `envconfig:"LOG_DEV" default:"false"`

	ReconnectMin      time.Duration `envconfig:"RECONNECT_MIN" default:"500ms"`
	ReconnectMax      time.Duration `envconfig:"RECONNECT_MAX" default:"30s"`
	ReconnectAttempts int           `envconfig:"RECONNECT_ATTEMPTS" default:"0"`

	// RenameRate caps rename commands per second; zero is unlimited.
	RenameRate  float64 `envconfig:"RENAME_RATE" default:"0"`
	RenameBurst int     `envconfig:"RENAME_BURST" default:"1"`

	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Backend:      "auto",
		Watch:        true,
		LogLevel:     "info",
		ReconnectMin: 500 * time.Millisecond,
		ReconnectMax: 30 * time.Second,
		RenameBurst:  1,
	}
}

// Validate rejects settings the daemon cannot run with.
func (c *Config) Validate() error {
	if c.ReconnectMin <= 0 {
		return fmt.Errorf("reconnect minimum must be positive, got %s", c.ReconnectMin)
	}
	if c.ReconnectMax < c.ReconnectMin {
		return fmt.Errorf("reconnect maximum %s is below minimum %s", c.ReconnectMax, c.ReconnectMin)
	}
	if c.RenameRate < 0 {
		return fmt.Errorf("rename rate must not be negative, got %g", c.RenameRate)
	}
	return nil
}
