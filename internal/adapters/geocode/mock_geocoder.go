package geocode

import (
	"context"
	"fmt"

	"bus-tracker/internal/ports"
)

// MockGeocoder answers from a fixed table keyed by CoordKey.
// Unknown coordinates produce an error.
type MockGeocoder struct {
	m map[string]ports.ReverseGeocodeResult
}

type MockPlace struct {
	Lat, Lon float64
	Result   ports.ReverseGeocodeResult
}

func NewMockGeocoder(places []MockPlace) *MockGeocoder {
	m := make(map[string]ports.ReverseGeocodeResult, len(places))
	for _, p := range places {
		m[CoordKey(p.Lat, p.Lon)] = p.Result
	}
	return &MockGeocoder{m: m}
}

func (g *MockGeocoder) Reverse(ctx context.Context, lat, lon float64) (ports.ReverseGeocodeResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.ReverseGeocodeResult{}, err
	}

	r, ok := g.m[CoordKey(lat, lon)]
	if !ok {
		return ports.ReverseGeocodeResult{}, fmt.Errorf("no place for %s", CoordKey(lat, lon))
	}
	return r, nil
}
