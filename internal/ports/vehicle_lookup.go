package ports

import (
	"context"

	"bus-tracker/internal/domain"
)

// Contract for pull-based bulk position lookups.
type VehicleLookup interface {
	// Return every vehicle position the upstream currently knows about.
	LookupAll(ctx context.Context) ([]domain.VehicleRecord, error)
}
