package domain

import "strings"

// VehicleRecord is one entry of a bulk position lookup after normalization.
// ID is the canonical identifier; Aliases holds every identifier the upstream
// record carried, ID included.
type VehicleRecord struct {
	ID       string
	Aliases  []string
	Position Position
}

// Matches reports whether vehicleID names this vehicle under any of its identifiers.
func (v VehicleRecord) Matches(vehicleID string) bool {
	want := strings.TrimSpace(vehicleID)
	if want == "" {
		return false
	}
	for _, a := range v.Aliases {
		if strings.EqualFold(a, want) {
			return true
		}
	}
	return strings.EqualFold(v.ID, want)
}
