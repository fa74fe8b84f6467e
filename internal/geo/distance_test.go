package geo

import (
	"math"
	"testing"
)

func TestDistanceMeters(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tol                    float64
	}{
		{"same point", 12.9716, 77.5946, 12.9716, 77.5946, 0, 1e-9},
		// One degree of longitude on the equator: R * pi / 180.
		{"one degree on equator", 0, 0, 0, 1, 111194.93, 0.5},
		{"one degree of latitude", 0, 0, 1, 0, 111194.93, 0.5},
		{"antipodal", 0, 0, 0, 180, math.Pi * EarthRadiusMeters, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := DistanceMeters(c.lat1, c.lon1, c.lat2, c.lon2)
			if math.Abs(got-c.want) > c.tol {
				t.Fatalf("DistanceMeters = %.3f, want %.3f (tol %.3f)", got, c.want, c.tol)
			}
		})
	}
}

func TestDistanceMetersSymmetric(t *testing.T) {
	a := DistanceMeters(12.9716, 77.5946, 13.0827, 80.2707)
	b := DistanceMeters(13.0827, 80.2707, 12.9716, 77.5946)
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestDistanceMetersNaN(t *testing.T) {
	if got := DistanceMeters(math.NaN(), 0, 0, 0); !math.IsNaN(got) {
		t.Fatalf("DistanceMeters(NaN) = %f, want NaN", got)
	}
}

func TestBearingDegrees(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"north", 0, 0, 1, 0, 0},
		{"east", 0, 0, 0, 1, 90},
		{"south", 1, 0, 0, 0, 180},
		{"west", 0, 1, 0, 0, 270},
	}

	for _, c := range cases {
		got := BearingDegrees(c.lat1, c.lon1, c.lat2, c.lon2)
		if math.Abs(got-c.want) > 1e-6 {
			t.Errorf("%s: BearingDegrees = %f, want %f", c.name, got, c.want)
		}
	}
}
