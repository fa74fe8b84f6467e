package services

import (
	"context"
	"log"
	"math"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/platform/obs"
	"bus-tracker/internal/ports"
)

// EtaEstimator asks the remote ETA service for the time left on a route and
// normalizes every failure to domain.EtaUnavailable.
type EtaEstimator struct {
	provider ports.EtaProvider
}

func NewEtaEstimator(provider ports.EtaProvider) *EtaEstimator {
	return &EtaEstimator{provider: provider}
}

// Estimate returns the ETA for pos on route. speed is the vehicle's reported
// speed in km/h, if any; the service may substitute the route speed limit and
// reports what it used.
func (e *EtaEstimator) Estimate(
	ctx context.Context,
	pos *domain.Position,
	route *domain.RouteGeometry,
	speed *float64,
) domain.EtaResult {
	if e.provider == nil || pos == nil || route == nil || !pos.Valid() {
		return domain.EtaUnavailable()
	}

	var err error
	defer obs.Time(ctx, "eta.Estimate")(&err)

	req := ports.EtaRequest{
		Lat:     pos.Latitude,
		Lon:     pos.Longitude,
		Speed:   nonNegative(speed),
		RouteID: route.ID,
	}

	var resp ports.EtaResponse
	resp, err = e.provider.Estimate(ctx, req)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("eta estimate failed: route_id=%s err=%v", route.ID, err)
		}
		return domain.EtaUnavailable()
	}

	eta := nonNegative(resp.EtaMinutes)
	if eta == nil {
		return domain.EtaUnavailable()
	}

	return domain.EtaResult{
		EtaMinutes:   eta,
		UsedSpeedKmh: nonNegative(resp.UsedSpeed),
	}
}

// nonNegative returns a copy of v when it is a finite, non-negative number.
func nonNegative(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return nil
	}
	out := *v
	return &out
}
