package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisPositionCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	c := NewRedisPositionCache(client, 0)

	if _, err := c.Get(ctx, "B7"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("Get on empty cache err = %v, want ErrCacheMiss", err)
	}

	speed := 22.0
	if err := c.Put(ctx, "B7", domain.Position{Latitude: 10, Longitude: 20, Speed: &speed}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := c.Get(ctx, "B7")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Latitude != 10 || got.Longitude != 20 || got.Speed == nil || *got.Speed != 22 {
		t.Fatalf("Get = %+v, want stored position", got)
	}
}

func TestRedisPositionCache_Expires(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedisPositionCache(client, time.Minute)

	if err := c.Put(ctx, "B7", domain.Position{Latitude: 1, Longitude: 2}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if ttl := mr.TTL(redisKeyPrefix + "B7"); ttl != time.Minute {
		t.Fatalf("TTL = %v, want %v", ttl, time.Minute)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := c.Get(ctx, "B7"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("Get after expiry err = %v, want ErrCacheMiss", err)
	}
}
