package cache

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/platform/db"
	"bus-tracker/internal/ports"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenSqlite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSqliteSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return conn
}

func TestSqlitePositionCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewSqlitePositionCache(openTestDB(t))

	if _, err := c.Get(ctx, "B12"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("Get on empty cache err = %v, want ErrCacheMiss", err)
	}

	speed := 31.5
	want := domain.Position{Latitude: 12.97, Longitude: 77.59, Speed: &speed, Timestamp: "2024-05-01T10:00:00Z"}
	if err := c.Put(ctx, "B12", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := c.Get(ctx, " B12 ")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Latitude != want.Latitude || got.Longitude != want.Longitude || got.Timestamp != want.Timestamp {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}
	if got.Speed == nil || *got.Speed != speed {
		t.Fatalf("Speed = %v, want %v", got.Speed, speed)
	}
}

func TestSqlitePositionCache_OverwriteAndNilSpeed(t *testing.T) {
	ctx := context.Background()
	c := NewSqlitePositionCache(openTestDB(t))

	speed := 10.0
	if err := c.Put(ctx, "B1", domain.Position{Latitude: 1, Longitude: 1, Speed: &speed}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put(ctx, "B1", domain.Position{Latitude: 2, Longitude: 3}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := c.Get(ctx, "B1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Latitude != 2 || got.Longitude != 3 || got.Speed != nil {
		t.Fatalf("Get = %+v, want overwritten entry without speed", got)
	}
}

func TestSqlitePositionCache_RejectsEmptyID(t *testing.T) {
	c := NewSqlitePositionCache(openTestDB(t))
	if err := c.Put(context.Background(), "  ", domain.Position{}); err == nil {
		t.Fatalf("Put with empty id returned nil error")
	}
}

func TestSqliteReverseGeocodeCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteReverseGeocodeCache(openTestDB(t))

	if _, ok, err := c.Get(ctx, "12.9716,77.5946"); err != nil || ok {
		t.Fatalf("Get on empty cache = ok=%v err=%v, want miss", ok, err)
	}

	want := ports.ReverseGeocodeResult{Suburb: "Shivajinagar", County: "Bangalore North", State: "Karnataka", Country: "India"}
	if err := c.Put(ctx, "12.9716,77.5946", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(ctx, "12.9716,77.5946")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v, want hit", ok, err)
	}
	if got != want {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}
}

func TestSeedFromJSON(t *testing.T) {
	ctx := context.Background()
	c := NewSqlitePositionCache(openTestDB(t))

	path := filepath.Join(t.TempDir(), "seed.json")
	body := `[
		{"vehicle_id": "B1", "latitude": 12.9, "longitude": 77.5, "speed": 20},
		{"vehicle_id": "B2", "latitude": 13.0, "longitude": 77.6, "timestamp": "2024-05-01T10:00:00Z"}
	]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	n, err := SeedFromJSON(ctx, c, path)
	if err != nil {
		t.Fatalf("SeedFromJSON: %v", err)
	}
	if n != 2 {
		t.Fatalf("seeded = %d, want 2", n)
	}

	got, err := c.Get(ctx, "B2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Timestamp != "2024-05-01T10:00:00Z" {
		t.Fatalf("Timestamp = %q, want seeded value", got.Timestamp)
	}
}

func TestSeedFromJSON_RejectsInvalidCoordinates(t *testing.T) {
	c := NewSqlitePositionCache(openTestDB(t))

	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(`[{"vehicle_id": "B1", "latitude": 120, "longitude": 0}]`), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	if _, err := SeedFromJSON(context.Background(), c, path); err == nil {
		t.Fatalf("SeedFromJSON accepted latitude 120")
	}
}
