package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/ports"
)

// Initialize the SQLite cache schema.
func InitSqliteSchema(db *sql.DB) error {
	return initSchema(db, []string{
		`
	CREATE TABLE IF NOT EXISTS position_cache (
		vehicle_id TEXT PRIMARY KEY,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		speed REAL,
		reported_at TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS reverse_geocode_cache (
		coord_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	);
	`,
	})
}

// Initialize the postgres cache schema.
func InitPostgresSchema(db *sql.DB) error {
	return initSchema(db, []string{
		`
	CREATE TABLE IF NOT EXISTS position_cache (
		vehicle_id TEXT PRIMARY KEY,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		speed DOUBLE PRECISION,
		reported_at TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS reverse_geocode_cache (
		coord_key TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	);
	`,
	})
}

func initSchema(db *sql.DB, statements []string) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type PositionSeed struct {
	VehicleID string   `json:"vehicle_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Speed     *float64 `json:"speed"`
	Timestamp string   `json:"timestamp"`
}

// Populate the last-known-good cache from a JSON file.
func SeedFromJSON(ctx context.Context, c ports.PositionCache, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed positions: read %q: %w", jsonPath, err)
	}

	var data []PositionSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed positions: parse json: %w", err)
	}

	for i, item := range data {
		id := strings.TrimSpace(item.VehicleID)
		if id == "" {
			return i, fmt.Errorf("seed positions: item at index %d: vehicle_id cannot be empty", i+1)
		}

		pos := domain.Position{
			Latitude:  item.Latitude,
			Longitude: item.Longitude,
			Speed:     item.Speed,
			Timestamp: item.Timestamp,
		}
		if !pos.Valid() {
			return i, fmt.Errorf("seed positions: item at index %d: invalid coordinates (%f, %f)", i+1, item.Latitude, item.Longitude)
		}

		if err := c.Put(ctx, id, pos); err != nil {
			return i, fmt.Errorf("seed positions: vehicle_id=%s: %w", id, err)
		}
	}

	return len(data), nil
}
