// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything cmd/server needs at startup.
type Config struct {
	Port   int    `env:"PORT"    envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"./data/tablesplit.db"`

	// JWTSecret signs operator shift tokens.
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	SettlementQueueSize int           `env:"SETTLEMENT_QUEUE_SIZE" envDefault:"256"`
	ClosedRetention     time.Duration `env:"CLOSED_RETENTION"      envDefault:"10m"`
	// IdleRetention drops unfinished splits nobody has touched for this long.
	IdleRetention time.Duration `env:"IDLE_RETENTION" envDefault:"4h"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses Config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SettlementQueueSize < 1 {
		return Config{}, fmt.Errorf("SETTLEMENT_QUEUE_SIZE must be positive, got %d", cfg.SettlementQueueSize)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.IdleRetention <= 0 {
		return Config{}, fmt.Errorf("IDLE_RETENTION must be positive, got %s", cfg.IdleRetention)
	}
	return cfg, nil
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
