package ports

import (
	"context"
	"errors"

	"bus-tracker/internal/domain"
)

// ErrCacheMiss is returned by PositionCache.Get when no entry exists.
var ErrCacheMiss = errors.New("position cache: miss")

// Port: last-known-good position per vehicle, kept across network loss.
type PositionCache interface {
	Get(ctx context.Context, vehicleID string) (domain.Position, error)
	Put(ctx context.Context, vehicleID string, pos domain.Position) error
}
