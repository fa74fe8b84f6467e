package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bus-tracker/internal/platform/obs"
	"bus-tracker/internal/ports"
)

// SQLReverseGeocodeCache is a postgres-backed cache of reverse geocoding answers.
type SQLReverseGeocodeCache struct {
	DB *sql.DB
}

func NewSQLReverseGeocodeCache(db *sql.DB) *SQLReverseGeocodeCache {
	return &SQLReverseGeocodeCache{DB: db}
}

func (s *SQLReverseGeocodeCache) Get(
	ctx context.Context,
	key string,
) (_ ports.ReverseGeocodeResult, _ bool, err error) {
	defer obs.Time(ctx, "reverse.cache.Get")(&err)

	if s.DB == nil {
		return ports.ReverseGeocodeResult{}, false, errors.New("reverse geocode cache: db is nil")
	}

	var payload []byte
	err = s.DB.QueryRowContext(ctx, `
	SELECT payload
	FROM reverse_geocode_cache
	WHERE coord_key = $1;
	`, strings.TrimSpace(key)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ReverseGeocodeResult{}, false, nil
	}
	if err != nil {
		return ports.ReverseGeocodeResult{}, false, fmt.Errorf("get reverse geocode cache key=%q: %w", key, err)
	}

	var res ports.ReverseGeocodeResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return ports.ReverseGeocodeResult{}, false, fmt.Errorf("decode reverse geocode cache key=%q: %w", key, err)
	}

	return res, true, nil
}

func (s *SQLReverseGeocodeCache) Put(ctx context.Context, key string, res ports.ReverseGeocodeResult) error {
	if s.DB == nil {
		return errors.New("reverse geocode cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert reverse geocode cache: empty coordinate key")
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode reverse geocode cache key=%q: %w", key, err)
	}

	if _, err := s.DB.ExecContext(ctx, `
	INSERT INTO reverse_geocode_cache (coord_key, payload)
	VALUES ($1, $2::jsonb)
	ON CONFLICT (coord_key) DO UPDATE
	SET payload = EXCLUDED.payload;
	`, key, string(payload)); err != nil {
		return fmt.Errorf("insert reverse geocode cache key=%q: %w", key, err)
	}

	return nil
}
