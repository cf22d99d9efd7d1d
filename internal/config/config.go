package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
)

// View modes for the milestones screen
const (
	ViewTimeline = "timeline"
	ViewBoard    = "board"
)

// Config holds runtime settings read from the environment
type Config struct {
	DataDir  string `env:"MILESTONES_DATA_DIR"`
	LogLevel string `env:"MILESTONES_LOG_LEVEL" envDefault:"info"`
	View     string `env:"MILESTONES_VIEW" envDefault:"timeline"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment, fills defaults and validates the result
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return Config{}, err
		}
		cfg.DataDir = dir
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings
func (c Config) Validate() error {
	if c.View != ViewTimeline && c.View != ViewBoard {
		return fmt.Errorf("invalid view %q: want %s or %s", c.View, ViewTimeline, ViewBoard)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// DefaultDataDir returns $XDG_DATA_HOME/milestones or ~/.local/share/milestones
func DefaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "milestones"), nil
}
