package services

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/ports"
)

// AddressResolver turns positions into human-readable place names.
// It never fails: when the geocoder is unavailable it falls back to the raw
// coordinates.
type AddressResolver struct {
	geocoder ports.ReverseGeocoder
	debounce time.Duration
}

func NewAddressResolver(geocoder ports.ReverseGeocoder, debounce time.Duration) *AddressResolver {
	return &AddressResolver{geocoder: geocoder, debounce: debounce}
}

// Resolve waits out the debounce delay, then reverse-geocodes pos.
// Cancelling ctx during the delay (a newer position arrived) skips the lookup;
// the returned label is then meaningless and must be discarded by the caller.
func (r *AddressResolver) Resolve(ctx context.Context, pos *domain.Position) string {
	if pos == nil {
		return ""
	}

	if r.debounce > 0 {
		timer := time.NewTimer(r.debounce)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ""
		case <-timer.C:
		}
	}

	raw := formatCoordinates(pos.Latitude, pos.Longitude)
	if r.geocoder == nil {
		return raw
	}

	res, err := r.geocoder.Reverse(ctx, pos.Latitude, pos.Longitude)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("address resolve failed: lat=%f lon=%f err=%v", pos.Latitude, pos.Longitude, err)
		}
		return raw
	}

	if label := FormatAddress(res); label != "" {
		return label
	}
	return raw
}

// FormatAddress builds "place, district, state, country" from a reverse
// geocode result, skipping empty parts and a district that repeats the place
// name. It returns the provider's display name when no part is present.
func FormatAddress(res ports.ReverseGeocodeResult) string {
	place := firstNonEmpty(res.Station, res.Suburb, res.Town, res.City, res.Village)
	district := firstNonEmpty(res.StateDistrict, res.County)
	if strings.EqualFold(district, place) {
		district = ""
	}

	parts := make([]string, 0, 4)
	for _, p := range []string{place, district, res.State, res.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) == 0 {
		return strings.TrimSpace(res.DisplayName)
	}
	return strings.Join(parts, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func formatCoordinates(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', 6, 64) + ", " + strconv.FormatFloat(lon, 'f', 6, 64)
}
