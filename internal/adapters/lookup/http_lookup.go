package lookup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/platform/httpx"
	"bus-tracker/internal/platform/obs"
)

// Identifier fields the bulk endpoint has been seen to use, in priority order.
var idFields = []string{"id", "bus_id", "busNumber", "number"}

// HTTPLookup implements VehicleLookup against GET {base}/buses.
type HTTPLookup struct {
	client  *httpx.Client
	baseURL string
}

func NewHTTPLookup(baseURL string, timeout time.Duration) (*HTTPLookup, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("http lookup: base url is empty")
	}

	return &HTTPLookup{
		client:  httpx.NewClient(timeout),
		baseURL: baseURL,
	}, nil
}

func (h *HTTPLookup) LookupAll(ctx context.Context) (_ []domain.VehicleRecord, err error) {
	defer obs.Time(ctx, "lookup.http.LookupAll")(&err)

	var raw []map[string]any
	if err := h.client.GetJSON(ctx, h.baseURL+"/buses", &raw); err != nil {
		return nil, fmt.Errorf("lookup all vehicles: %w", err)
	}

	out := make([]domain.VehicleRecord, 0, len(raw))
	for i, item := range raw {
		rec, ok := NormalizeVehicle(item)
		if !ok {
			log.Printf("op=lookup.http.LookupAll index=%d skipped=unrecognized_record", i)
			continue
		}
		out = append(out, rec)
	}

	return out, nil
}

// NormalizeVehicle maps one upstream bulk record onto a VehicleRecord.
// Identifiers may arrive under any of id, bus_id, busNumber or number, as
// strings or numbers; coordinates and speed may be numbers or numeric
// strings. Records without an identifier or numeric coordinates are rejected.
func NormalizeVehicle(raw map[string]any) (domain.VehicleRecord, bool) {
	var rec domain.VehicleRecord

	for _, field := range idFields {
		id, ok := asString(raw[field])
		if !ok {
			continue
		}
		if rec.ID == "" {
			rec.ID = id
		}
		rec.Aliases = append(rec.Aliases, id)
	}
	if rec.ID == "" {
		return domain.VehicleRecord{}, false
	}

	lat, okLat := asFloat(raw["latitude"])
	lon, okLon := asFloat(raw["longitude"])
	if !okLat || !okLon {
		return domain.VehicleRecord{}, false
	}

	rec.Position = domain.Position{Latitude: lat, Longitude: lon}
	if speed, ok := asFloat(raw["speed"]); ok && speed >= 0 {
		rec.Position.Speed = &speed
	}
	if ts, ok := asString(raw["timestamp"]); ok {
		rec.Position.Timestamp = ts
	}

	return rec, true
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
