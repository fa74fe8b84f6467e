package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/platform/obs"
	"bus-tracker/internal/ports"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "tracker:position:"

// RedisPositionCache stores last-known-good positions as JSON values with an
// optional expiry. A zero TTL keeps entries until overwritten.
type RedisPositionCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisPositionCache(client *redis.Client, ttl time.Duration) *RedisPositionCache {
	return &RedisPositionCache{Client: client, TTL: ttl}
}

func (r *RedisPositionCache) key(vehicleID string) string {
	return redisKeyPrefix + strings.TrimSpace(vehicleID)
}

func (r *RedisPositionCache) Get(ctx context.Context, vehicleID string) (_ domain.Position, err error) {
	defer obs.Time(ctx, "position.redis.Get")(&err)

	if r.Client == nil {
		return domain.Position{}, errors.New("position cache: redis client is nil")
	}

	raw, err := r.Client.Get(ctx, r.key(vehicleID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Position{}, ports.ErrCacheMiss
	}
	if err != nil {
		return domain.Position{}, fmt.Errorf("get position cache vehicle_id=%q: %w", vehicleID, err)
	}

	var pos domain.Position
	if err := json.Unmarshal(raw, &pos); err != nil {
		return domain.Position{}, fmt.Errorf("decode position cache vehicle_id=%q: %w", vehicleID, err)
	}

	return pos, nil
}

func (r *RedisPositionCache) Put(ctx context.Context, vehicleID string, pos domain.Position) (err error) {
	defer obs.Time(ctx, "position.redis.Put")(&err)

	if r.Client == nil {
		return errors.New("position cache: redis client is nil")
	}

	if strings.TrimSpace(vehicleID) == "" {
		return errors.New("insert position cache: empty vehicle id")
	}

	raw, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("encode position cache vehicle_id=%q: %w", vehicleID, err)
	}

	if err := r.Client.Set(ctx, r.key(vehicleID), raw, r.TTL).Err(); err != nil {
		return fmt.Errorf("insert position cache vehicle_id=%q: %w", vehicleID, err)
	}

	return nil
}
