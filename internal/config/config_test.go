package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.PollInterval != 15*time.Second {
		t.Fatalf("PollInterval = %v, want 15s", cfg.PollInterval)
	}
	if cfg.CacheDriver != "sqlite" {
		t.Fatalf("CacheDriver = %q, want sqlite", cfg.CacheDriver)
	}
	if cfg.LookupKind != "http" {
		t.Fatalf("LookupKind = %q, want http", cfg.LookupKind)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "3s")
	t.Setenv("CACHE_DRIVER", "REDIS")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Fatalf("PollInterval = %v, want 3s", cfg.PollInterval)
	}
	if cfg.CacheDriver != "redis" {
		t.Fatalf("CacheDriver = %q, want redis", cfg.CacheDriver)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("LIVE_WAIT", "soon")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "LIVE_WAIT") {
		t.Fatalf("err = %v, want LIVE_WAIT parse error", err)
	}
}

func TestLoadRequiresPostgresURL(t *testing.T) {
	t.Setenv("CACHE_DRIVER", "postgres")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error without DATABASE_URL")
	}
}

func TestLoadRequiresGTFSRTURL(t *testing.T) {
	t.Setenv("LOOKUP_KIND", "gtfsrt")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error without GTFSRT_VEHICLE_POSITIONS_URL")
	}
}
