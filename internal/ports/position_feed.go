package ports

import (
	"context"

	"bus-tracker/internal/domain"
)

// Subscription is one live push stream for a single vehicle.
//
// Positions is closed when the stream ends for any reason. Errors delivers at
// most one value over the lifetime of the subscription. Close releases the
// transport and may be called any number of times.
type Subscription interface {
	Positions() <-chan domain.Position
	Errors() <-chan error
	Close()
}

// Contract for opening push-based position streams.
type PositionFeed interface {
	// Open exactly one stream scoped to vehicleID. Transport failures,
	// including failure to connect, are reported through Subscription.Errors.
	Subscribe(ctx context.Context, vehicleID string) Subscription
}
