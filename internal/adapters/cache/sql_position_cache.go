package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/platform/obs"
	"bus-tracker/internal/ports"
)

// SQLPositionCache is a postgres-backed last-known-good position cache.
type SQLPositionCache struct {
	DB *sql.DB
}

func NewSQLPositionCache(db *sql.DB) *SQLPositionCache {
	return &SQLPositionCache{DB: db}
}

// Fetch the cached position for a vehicle.
func (s *SQLPositionCache) Get(ctx context.Context, vehicleID string) (_ domain.Position, err error) {
	defer obs.Time(ctx, "position.cache.Get")(&err)

	if s.DB == nil {
		return domain.Position{}, errors.New("position cache: db is nil")
	}

	q := `
	SELECT latitude, longitude, speed, reported_at
	FROM position_cache
	WHERE vehicle_id = $1;
	`

	var pos domain.Position
	var speed sql.NullFloat64
	err = s.DB.QueryRowContext(ctx, q, strings.TrimSpace(vehicleID)).
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
func (s *SQLPositionCache) Put(ctx context.Context, vehicleID string, pos domain.Position) (err error) {
	defer obs.Time(ctx, "position.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("position cache: db is nil")
	}

	id := strings.TrimSpace(vehicleID)
	if id == "" {
		return errors.New("insert position cache: empty vehicle id")
	}

	q := `
	INSERT INTO position_cache (vehicle_id, latitude, longitude, speed, reported_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, now())
	ON CONFLICT (vehicle_id) DO UPDATE
	SET latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		speed = EXCLUDED.speed,
		reported_at = EXCLUDED.reported_at,
		updated_at = EXCLUDED.updated_at;
	`

	if _, err := s.DB.ExecContext(ctx, q, id, pos.Latitude, pos.Longitude, nullFloat(pos.Speed), pos.Timestamp); err != nil {
		return fmt.Errorf("insert position cache vehicle_id=%q: %w", id, err)
	}

	return nil
}
