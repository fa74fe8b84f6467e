package ports

import (
	"context"
	"errors"

	"bus-tracker/internal/domain"
)

// ErrRouteNotFound is returned when no route is known for a vehicle.
var ErrRouteNotFound = errors.New("route not found")

// Port: a boundary for retrieving route geometry from the route data provider.
type RouteProvider interface {
	// Return the route the given vehicle is currently assigned to.
	RouteForVehicle(ctx context.Context, vehicleID string) (*domain.RouteGeometry, error)
}
