package ports

import "context"

// Structured reverse-geocoding answer. Any field may be empty.
type ReverseGeocodeResult struct {
	Station       string `json:"station,omitempty"`
	Suburb        string `json:"suburb,omitempty"`
	Town          string `json:"town,omitempty"`
	City          string `json:"city,omitempty"`
	Village       string `json:"village,omitempty"`
	County        string `json:"county,omitempty"`
	StateDistrict string `json:"state_district,omitempty"`
	State         string `json:"state,omitempty"`
	Country       string `json:"country,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
}

// Contract for turning coordinates into a place description.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (ReverseGeocodeResult, error)
}
