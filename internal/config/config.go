// Package config holds the engine's startup settings, read once from the
// environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Engine is the process-level configuration. The game ruleset itself lives
// in the YAML file named by GameConfigPath and is loaded separately.
type Engine struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`

	// AdminAPIKey authorizes admin transactions. When empty every admin
	// operation fails UNAUTHORIZED.
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	GameConfigPath string `env:"GAME_CONFIG" envDefault:"config/game.yaml"`

	SnapshotDir string `env:"SNAPSHOT_DIR" envDefault:"snapshots"`
	// SnapshotInterval of zero disables the periodic flusher; shutdown still
	// snapshots everything.
	SnapshotInterval time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"30s"`

	TxCacheLimit int `env:"TX_CACHE_LIMIT" envDefault:"10000"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// E2EShutdown exposes POST /__shutdown for end-to-end test runs.
	E2EShutdown bool `env:"E2E_SHUTDOWN" envDefault:"false"`
}

// Load parses the engine configuration from the environment.
func Load() (Engine, error) {
	var cfg Engine
	if err := env.Parse(&cfg); err != nil {
		return Engine{}, fmt.Errorf("parsing engine env: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address.
func (e Engine) Addr() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// SlogLevel maps the configured log level string onto a slog level,
// defaulting to info.
func (e Engine) SlogLevel() slog.Level {
	switch e.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
