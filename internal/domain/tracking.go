package domain

import "time"

// TrackingMode is the position source the tracking view is currently using.
type TrackingMode string

const (
	ModeNoSelection     TrackingMode = "NO_SELECTION"
	ModeLive            TrackingMode = "LIVE"
	ModeFallbackPolling TrackingMode = "FALLBACK_POLLING"
)

// TrackingViewState is the composite consumed by map and info-card views.
// Position prefers live data over fallback polls over the offline cache.
// HeadingDegrees is the bearing from the previous accepted position and is
// nil until the vehicle has moved; RemainingKm is the straight-line distance
// to the route end.
type TrackingViewState struct {
	VehicleID       string
	Mode            TrackingMode
	Position        *Position
	HeadingDegrees  *float64
	RemainingKm     *float64
	TripProgress    TripProgress
	UpcomingStop    string
	ResolvedAddress string
	Eta             EtaResult
	IsLive          bool
	IsOffline       bool
	UpdatedAt       time.Time
}

// NoSelection is the state of a view with no vehicle selected.
func NoSelection() TrackingViewState {
	return TrackingViewState{Mode: ModeNoSelection, Eta: EtaUnavailable()}
}
