package services

import (
	"math"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/geo"
)

// EndpointRadiusMeters is how close a vehicle must be to a route endpoint to
// count as being at it.
const EndpointRadiusMeters = 100.0

// Classify a vehicle's trip progress from its distance to the route endpoints.
//
// The heuristic is deliberately coarse: it compares straight-line distances
// to the start and end against the straight start-end length and does not
// look at the road path. A vehicle farther from both endpoints than they are
// from each other has not started. There is no hysteresis, so positions near
// the 100 m thresholds can flip between states on consecutive reports.
//
// While en route the upcoming stop is the first stop of the route; passed
// stops are not tracked.
func ClassifyProgress(pos *domain.Position, route *domain.RouteGeometry) domain.ProgressResult {
	if pos == nil || route == nil {
		return domain.ProgressResult{}
	}
	if math.IsNaN(pos.Latitude) || math.IsNaN(pos.Longitude) {
		return domain.ProgressResult{}
	}

	startDist := geo.DistanceMeters(pos.Latitude, pos.Longitude, route.StartLat, route.StartLon)
	endDist := geo.DistanceMeters(pos.Latitude, pos.Longitude, route.EndLat, route.EndLon)
	routeDist := geo.DistanceMeters(route.StartLat, route.StartLon, route.EndLat, route.EndLon)

	if math.IsNaN(startDist) || math.IsNaN(endDist) || math.IsNaN(routeDist) {
		return domain.ProgressResult{}
	}

	switch {
	case startDist > routeDist && endDist > routeDist:
		return domain.ProgressResult{TripProgress: domain.NotStarted}
	case endDist < EndpointRadiusMeters:
		return domain.ProgressResult{TripProgress: domain.ReachedDestination}
	case startDist < EndpointRadiusMeters:
		return domain.ProgressResult{TripProgress: domain.JustStarted, UpcomingStop: firstStop(route.Stops)}
	default:
		return domain.ProgressResult{TripProgress: domain.EnRoute, UpcomingStop: firstStop(route.Stops)}
	}
}

func firstStop(stops []string) string {
	if len(stops) == 0 {
		return ""
	}
	return stops[0]
}
