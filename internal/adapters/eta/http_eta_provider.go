package eta

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bus-tracker/internal/platform/httpx"
	"bus-tracker/internal/platform/obs"
	"bus-tracker/internal/ports"
)

// HTTPEtaProvider implements EtaProvider against the remote ETA service.
type HTTPEtaProvider struct {
	client  *httpx.Client
	baseURL string
}

func NewHTTPEtaProvider(baseURL string, timeout time.Duration) (*HTTPEtaProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("eta provider: base url is empty")
	}

	return &HTTPEtaProvider{
		client:  httpx.NewClient(timeout),
		baseURL: baseURL,
	}, nil
}

type etaRequest struct {
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
	Speed   *float64 `json:"speed"`
	RouteID string   `json:"route_id"`
}

type etaResponse struct {
	EtaMinutes *float64 `json:"eta_minutes"`
	UsedSpeed  *float64 `json:"used_speed"`
}

func (p *HTTPEtaProvider) Estimate(ctx context.Context, req ports.EtaRequest) (_ ports.EtaResponse, err error) {
	defer obs.Time(ctx, "eta.Estimate")(&err)

	body := etaRequest{
		Lat:     req.Lat,
		Lon:     req.Lon,
		Speed:   req.Speed,
		RouteID: req.RouteID,
	}

	var decoded etaResponse
	if err := p.client.PostJSON(ctx, p.baseURL+"/eta", body, &decoded); err != nil {
		return ports.EtaResponse{}, fmt.Errorf("estimate eta route_id=%s: %w", req.RouteID, err)
	}

	return ports.EtaResponse{
		EtaMinutes: decoded.EtaMinutes,
		UsedSpeed:  decoded.UsedSpeed,
	}, nil
}
