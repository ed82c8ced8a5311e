package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("expected addr :8080, got %s", cfg.Addr())
	}
	if cfg.DBPath != "./data/tablesplit.db" {
		t.Errorf("unexpected db path %s", cfg.DBPath)
	}
	if cfg.TokenTTL != 12*time.Hour {
		t.Errorf("expected 12h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.SettlementQueueSize != 256 {
		t.Errorf("expected queue size 256, got %d", cfg.SettlementQueueSize)
	}
	if cfg.ClosedRetention != 10*time.Minute {
		t.Errorf("expected 10m retention, got %s", cfg.ClosedRetention)
	}
	if cfg.IdleRetention != 4*time.Hour {
		t.Errorf("expected 4h idle retention, got %s", cfg.IdleRetention)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %s", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "8h")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("IDLE_RETENTION", "90m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9090 || cfg.TokenTTL != 8*time.Hour || cfg.LogLevel != slog.LevelDebug || cfg.IdleRetention != 90*time.Minute {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "parse env:"},
		{"bad port", map[string]string{"JWT_SECRET": "x", "PORT": "eighty"}, "parse env:"},
		{"empty queue", map[string]string{"JWT_SECRET": "x", "SETTLEMENT_QUEUE_SIZE": "0"}, "SETTLEMENT_QUEUE_SIZE"},
		{"zero ttl", map[string]string{"JWT_SECRET": "x", "TOKEN_TTL": "0s"}, "TOKEN_TTL"},
		{"negative idle retention", map[string]string{"JWT_SECRET": "x", "IDLE_RETENTION": "-1m"}, "IDLE_RETENTION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}
