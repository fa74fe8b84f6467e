package ports

import "context"

// Input to the remote ETA service. Speed is in km/h and may be absent.
type EtaRequest struct {
	Lat     float64
	Lon     float64
	Speed   *float64
	RouteID string
}

// Raw ETA service answer; both fields are nullable upstream.
type EtaResponse struct {
	EtaMinutes *float64
	UsedSpeed  *float64
}

// Contract for computing remaining time to the end of a route.
type EtaProvider interface {
	Estimate(ctx context.Context, req EtaRequest) (EtaResponse, error)
}
