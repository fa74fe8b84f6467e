package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bus-tracker/internal/ports"
)

// SQLite backed cache mapping rounded coordinate keys to reverse geocoding
// answers. Keys are expected to be normalized by the caller.
type SqliteReverseGeocodeCache struct {
	DB *sql.DB
}

func NewSqliteReverseGeocodeCache(db *sql.DB) *SqliteReverseGeocodeCache {
	return &SqliteReverseGeocodeCache{DB: db}
}

// Fetch the cached answer for key. The bool is false on a miss.
func (s *SqliteReverseGeocodeCache) Get(ctx context.Context, key string) (ports.ReverseGeocodeResult, bool, error) {
	if s.DB == nil {
		return ports.ReverseGeocodeResult{}, false, errors.New("reverse geocode cache: db is nil")
	}

	var payload string
	err := s.DB.QueryRowContext(ctx, `
	SELECT payload
	FROM reverse_geocode_cache
	WHERE coord_key = ?;
	`, strings.TrimSpace(key)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ReverseGeocodeResult{}, false, nil
	}
	if err != nil {
		return ports.ReverseGeocodeResult{}, false, fmt.Errorf("get reverse geocode cache key=%q: %w", key, err)
	}

	var res ports.ReverseGeocodeResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return ports.ReverseGeocodeResult{}, false, fmt.Errorf("decode reverse geocode cache key=%q: %w", key, err)
	}

	return res, true, nil
}

// Store a key -> answer mapping in the cache.
func (s *SqliteReverseGeocodeCache) Put(ctx context.Context, key string, res ports.ReverseGeocodeResult) error {
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
	INSERT OR REPLACE INTO reverse_geocode_cache (
		coord_key,
		payload
	)
	VALUES (?, ?);
	`, key, string(payload)); err != nil {
		return fmt.Errorf("insert reverse geocode cache key=%q: %w", key, err)
	}

	return nil
}
