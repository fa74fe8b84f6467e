package geocode

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bus-tracker/internal/platform/httpx"
	"bus-tracker/internal/platform/obs"
	"bus-tracker/internal/ports"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// ReverseCache persists reverse geocoding answers by rounded coordinate key.
type ReverseCache interface {
	Get(ctx context.Context, key string) (ports.ReverseGeocodeResult, bool, error)
	Put(ctx context.Context, key string, res ports.ReverseGeocodeResult) error
}

// NominatimGeocoder implements ReverseGeocoder against a Nominatim
// compatible /reverse endpoint.
//
// Answers are cached by coordinate rounded to 4 decimals (about 11 m), so a
// bus idling at a stop does not cost one upstream call per report.
type NominatimGeocoder struct {
	client  *httpx.Client
	baseURL string
	cache   ReverseCache
}

func NewNominatimGeocoder(baseURL, userAgent string, cache ReverseCache) (*NominatimGeocoder, error) {
	if strings.TrimSpace(userAgent) == "" {
		return nil, errors.New("nominatim geocoder: user agent is empty")
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &NominatimGeocoder{
		client:  httpx.NewClient(10*time.Second, httpx.WithHeader("User-Agent", userAgent)),
		baseURL: baseURL,
		cache:   cache,
	}, nil
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Station       string `json:"station"`
		Suburb        string `json:"suburb"`
		Town          string `json:"town"`
		City          string `json:"city"`
		Village       string `json:"village"`
		County        string `json:"county"`
		StateDistrict string `json:"state_district"`
		State         string `json:"state"`
		Country       string `json:"country"`
	} `json:"address"`
	Error string `json:"error"`
}

// CoordKey rounds a coordinate pair into a cache key.
func CoordKey(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', 4, 64) + "," + strconv.FormatFloat(lon, 'f', 4, 64)
}

func (n *NominatimGeocoder) Reverse(
	ctx context.Context,
	lat float64,
	lon float64,
) (_ ports.ReverseGeocodeResult, err error) {
	defer obs.Time(ctx, "nominatim.Reverse")(&err)

	key := CoordKey(lat, lon)

	// Check persistent cache before issuing the external call.
	if n.cache != nil {
		hit, ok, err := n.cache.Get(ctx, key)
		if err != nil {
			log.Printf("op=nominatim.Reverse key=%s cache_get_err=%v", key, err)
		} else if ok {
			return hit, nil
		}
	}

	endpoint := n.baseURL + "/reverse"
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	resp, err := n.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := n.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return ports.ReverseGeocodeResult{}, fmt.Errorf("reverse geocode %s: %w", key, err)
	}
	defer resp.Body.Close()

	var decoded reverseResponse
	if err := decodeJSON(resp, &decoded); err != nil {
		return ports.ReverseGeocodeResult{}, fmt.Errorf("reverse geocode %s: %w", key, err)
	}

	if decoded.Error != "" {
		return ports.ReverseGeocodeResult{}, fmt.Errorf("reverse geocode %s: upstream error: %s", key, decoded.Error)
	}

	res := ports.ReverseGeocodeResult{
		Station:       decoded.Address.Station,
		Suburb:        decoded.Address.Suburb,
		Town:          decoded.Address.Town,
		City:          decoded.Address.City,
		Village:       decoded.Address.Village,
		County:        decoded.Address.County,
		StateDistrict: decoded.Address.StateDistrict,
		State:         decoded.Address.State,
		Country:       decoded.Address.Country,
		DisplayName:   decoded.DisplayName,
	}

	// Persist for future lookups; a failed write only costs a repeat call.
	if n.cache != nil {
		if err := n.cache.Put(ctx, key, res); err != nil {
			log.Printf("op=nominatim.Reverse key=%s cache_put_err=%v", key, err)
		}
	}

	return res, nil
}
