// Package config assembles the tracker configuration from environment
// variables (optionally loaded from .env by the caller) and validates it.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the complete runtime configuration of the tracker.
type Config struct {
	Port string `validate:"required,numeric"`

	FeedBaseURL   string `validate:"required,url"`
	FeedAuthToken string

	LookupKind                string `validate:"oneof=http gtfsrt"`
	LookupBaseURL             string `validate:"required_if=LookupKind http"`
	GTFSRTVehiclePositionsURL string `validate:"required_if=LookupKind gtfsrt"`

	GeocoderBaseURL   string `validate:"required,url"`
	GeocoderUserAgent string `validate:"required"`

	EtaBaseURL string `validate:"required,url"`

	CacheDriver string        `validate:"oneof=sqlite postgres redis"`
	DBPath      string        `validate:"required_if=CacheDriver sqlite"`
	DatabaseURL string        `validate:"required_if=CacheDriver postgres"`
	RedisAddr   string        `validate:"required_if=CacheDriver redis"`
	CacheTTL    time.Duration `validate:"gte=0"`

	PollInterval         time.Duration `validate:"gt=0"`
	LiveWait             time.Duration `validate:"gt=0"`
	AddressDebounce      time.Duration `validate:"gte=0"`
	ConnectivityProbeURL string        `validate:"omitempty,url"`
	ConnectivityInterval time.Duration `validate:"gte=0"`

	RoutesPath string `validate:"required"`
	SeedPath   string
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var errs []string
	duration := func(key, fallback string) time.Duration {
		raw := Get(key, fallback)
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s=%q: %v", key, raw, err))
		}
		return d
	}

	cfg := &Config{
		Port: Get("PORT", "8080"),

		FeedBaseURL:   Get("FEED_BASE_URL", "ws://localhost:5000"),
		FeedAuthToken: os.Getenv("FEED_AUTH_TOKEN"),

		LookupKind:                strings.ToLower(Get("LOOKUP_KIND", "http")),
		LookupBaseURL:             Get("LOOKUP_BASE_URL", "http://localhost:5000/api"),
		GTFSRTVehiclePositionsURL: os.Getenv("GTFSRT_VEHICLE_POSITIONS_URL"),

		GeocoderBaseURL:   Get("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: Get("GEOCODER_USER_AGENT", "bus-tracker/1.0"),

		EtaBaseURL: Get("ETA_BASE_URL", "http://localhost:5000/api"),

		CacheDriver: strings.ToLower(Get("CACHE_DRIVER", "sqlite")),
		DBPath:      Get("DB_PATH", "data/tracker.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		CacheTTL:    duration("CACHE_TTL", "24h"),

		PollInterval:         duration("POLL_INTERVAL", "15s"),
		LiveWait:             duration("LIVE_WAIT", "10s"),
		AddressDebounce:      duration("ADDRESS_DEBOUNCE", "500ms"),
		ConnectivityProbeURL: os.Getenv("CONNECTIVITY_PROBE_URL"),
		ConnectivityInterval: duration("CONNECTIVITY_INTERVAL", "5s"),

		RoutesPath: Get("ROUTES_PATH", "data/routes.yml"),
		SeedPath:   os.Getenv("SEED_PATH"),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("load config: %s", strings.Join(errs, "; "))
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}
