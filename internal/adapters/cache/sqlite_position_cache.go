package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/ports"
)

// SQLite backed last-known-good position cache keyed by vehicle id.
type SqlitePositionCache struct {
	DB *sql.DB
}

func NewSqlitePositionCache(db *sql.DB) *SqlitePositionCache {
	return &SqlitePositionCache{DB: db}
}

// Fetch the cached position for a vehicle.
func (s *SqlitePositionCache) Get(ctx context.Context, vehicleID string) (domain.Position, error) {
	if s.DB == nil {
		return domain.Position{}, errors.New("position cache: db is nil")
	}

	q := `
	SELECT
		latitude,
		longitude,
		speed,
		reported_at
	FROM position_cache
	WHERE vehicle_id = ?;
	`

	var pos domain.Position
	var speed sql.NullFloat64
	err := s.DB.QueryRowContext(ctx, q, strings.TrimSpace(vehicleID)).
		Scan(&pos.Latitude, &pos.Longitude, &speed, &pos.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Position{}, ports.ErrCacheMiss
	}
	if err != nil {
		return domain.Position{}, fmt.Errorf("get position cache vehicle_id=%q: %w", vehicleID, err)
	}

	if speed.Valid {
		v := speed.Float64
		pos.Speed = &v
	}

	return pos, nil
}

// Store the position as the vehicle's last-known-good entry.
func (s *SqlitePositionCache) Put(ctx context.Context, vehicleID string, pos domain.Position) error {
	if s.DB == nil {
		return errors.New("position cache: db is nil")
	}

	id := strings.TrimSpace(vehicleID)
	if id == "" {
		return errors.New("insert position cache: empty vehicle id")
	}

	q := `
	INSERT OR REPLACE INTO position_cache (
		vehicle_id,
		latitude,
		longitude,
		speed,
		reported_at,
		updated_at
	)
	VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`

	if _, err := s.DB.ExecContext(ctx, q, id, pos.Latitude, pos.Longitude, nullFloat(pos.Speed), pos.Timestamp); err != nil {
		return fmt.Errorf("insert position cache vehicle_id=%q: %w", id, err)
	}

	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
