package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Position is a single location report for a vehicle.
// A Position is never mutated once produced; newer reports supersede it.
// Speed is in km/h and may be absent. Timestamp is passed through as
// reported by the upstream source.
type Position struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Speed     *float64 `json:"speed,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// Valid reports whether the coordinates are finite and within range.
func (p Position) Valid() bool {
	if !finite(p.Latitude) || !finite(p.Longitude) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// Coordinates is a bare latitude/longitude pair in degrees.
type Coordinates struct {
	Lat, Lon float64
}

func (p Position) Coordinates() Coordinates {
	return Coordinates{Lat: p.Latitude, Lon: p.Longitude}
}

// Key identifies a position report. Two reports with the same key carry the
// same information.
func (p Position) Key() string {
	var b strings.Builder
	b.WriteString(strconv.FormatFloat(p.Latitude, 'f', -1, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(p.Longitude, 'f', -1, 64))
	b.WriteByte('|')
	if p.Speed != nil {
		b.WriteString(strconv.FormatFloat(*p.Speed, 'f', -1, 64))
	}
	b.WriteByte('|')
	b.WriteString(p.Timestamp)
	return b.String()
}

// ReportedAfter reports whether p carries a strictly later RFC 3339 timestamp
// than q. It is false when either timestamp is missing or unparseable.
func (p Position) ReportedAfter(q Position) bool {
	pt, err := time.Parse(time.RFC3339, p.Timestamp)
	if err != nil {
		return false
	}
	qt, err := time.Parse(time.RFC3339, q.Timestamp)
	if err != nil {
		return false
	}
	return pt.After(qt)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
