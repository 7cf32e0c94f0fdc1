package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatalf("Load returned nil config without an error")
	}
	if cfg.Mode != "release" {
		t.Fatalf("mode = %q, want release", cfg.Mode)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port = %d, want 8080", cfg.Port)
	}
	if cfg.ReadLimit != 32768 {
		t.Fatalf("read_limit = %d, want 32768", cfg.ReadLimit)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Fatalf("ping_period = %v, want 54s", cfg.PingPeriod)
	}
	if cfg.TickPeriod != time.Second/30 {
		t.Fatalf("tick_period = %v, want %v", cfg.TickPeriod, time.Second/30)
	}
	if cfg.SpawnRange != 4 {
		t.Fatalf("spawn_range = %v, want 4", cfg.SpawnRange)
	}
}
