package dto

import (
	"time"

	"bus-tracker/internal/domain"
)

type SelectRequest struct {
	VehicleID string `json:"vehicle_id"`
}

type PositionResponse struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Speed     *float64 `json:"speed"`
	Timestamp string   `json:"timestamp,omitempty"`
}

type EtaResponse struct {
	EtaMinutes   *float64 `json:"eta_minutes"`
	UsedSpeedKmh *float64 `json:"used_speed_kmh"`
	Display      string   `json:"display"`
	SpeedDisplay string   `json:"speed_display"`
}

type TrackingResponse struct {
	VehicleID       string            `json:"vehicle_id,omitempty"`
	Mode            string            `json:"mode"`
	Position        *PositionResponse `json:"position"`
	HeadingDegrees  *float64          `json:"heading_degrees"`
	RemainingKm     *float64          `json:"remaining_km"`
	TripProgress    string            `json:"trip_progress,omitempty"`
	UpcomingStop    string            `json:"upcoming_stop,omitempty"`
	ResolvedAddress string            `json:"resolved_address,omitempty"`
	Eta             EtaResponse       `json:"eta"`
	IsLive          bool              `json:"is_live"`
	IsOffline       bool              `json:"is_offline"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// FromViewState renders absent ETA fields as "N/A" for display.
func FromViewState(st domain.TrackingViewState) TrackingResponse {
	out := TrackingResponse{
		VehicleID:       st.VehicleID,
		Mode:            string(st.Mode),
		TripProgress:    string(st.TripProgress),
		UpcomingStop:    st.UpcomingStop,
		ResolvedAddress: st.ResolvedAddress,
		HeadingDegrees:  st.HeadingDegrees,
		RemainingKm:     st.RemainingKm,
		Eta: EtaResponse{
			EtaMinutes:   st.Eta.EtaMinutes,
			UsedSpeedKmh: st.Eta.UsedSpeedKmh,
			Display:      st.Eta.MinutesDisplay(),
			SpeedDisplay: st.Eta.SpeedDisplay(),
		},
		IsLive:    st.IsLive,
		IsOffline: st.IsOffline,
		UpdatedAt: st.UpdatedAt,
	}

	if st.Position != nil {
		out.Position = &PositionResponse{
			Latitude:  st.Position.Latitude,
			Longitude: st.Position.Longitude,
			Speed:     st.Position.Speed,
			Timestamp: st.Position.Timestamp,
		}
	}

	return out
}
