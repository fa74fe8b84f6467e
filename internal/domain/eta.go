package domain

import "strconv"

// NotAvailable is rendered in place of any absent ETA field.
const NotAvailable = "N/A"

// EtaResult carries the remaining time to destination and the speed the ETA
// service actually used. Either field may be absent.
type EtaResult struct {
	EtaMinutes   *float64
	UsedSpeedKmh *float64
}

// EtaUnavailable is the sentinel returned whenever no ETA could be derived.
func EtaUnavailable() EtaResult { return EtaResult{} }

func (e EtaResult) Available() bool { return e.EtaMinutes != nil }

// MinutesDisplay renders the ETA rounded to whole minutes, or "N/A".
func (e EtaResult) MinutesDisplay() string {
	if e.EtaMinutes == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*e.EtaMinutes, 'f', 0, 64) + " min"
}

// SpeedDisplay renders the used speed with one decimal, or "N/A".
func (e EtaResult) SpeedDisplay() string {
	if e.UsedSpeedKmh == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*e.UsedSpeedKmh, 'f', 1, 64) + " km/h"
}
