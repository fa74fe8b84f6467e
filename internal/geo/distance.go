// Package geo holds great-circle calculations on a spherical Earth.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by every distance here.
const EarthRadiusMeters = 6_371_000.0

// DistanceMeters returns the haversine distance between two points in meters.
// NaN inputs yield NaN; callers guard.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degToRad(lat2 - lat1)
	dLon := degToRad(lon2 - lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(lat1))*math.Cos(degToRad(lat2))*sinLon*sinLon

	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	return DistanceMeters(lat1, lon1, lat2, lon2) / 1000.0
}

// BearingDegrees returns the initial great-circle bearing from the first
// point to the second, normalized to [0, 360).
func BearingDegrees(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := degToRad(lat1)
	phi2 := degToRad(lat2)
	dLon := degToRad(lon2 - lon1)

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)

	deg := radToDeg(math.Atan2(y, x))
	return math.Mod(deg+360, 360)
}

func degToRad(deg float64) float64 { return deg * (math.Pi / 180.0) }

func radToDeg(rad float64) float64 { return rad * (180.0 / math.Pi) }
