package routes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bus-tracker/internal/ports"
)

const catalogue = `
routes:
  - id: R5
    start_lat: 12.9716
    start_lon: 77.5946
    end_lat: 13.0358
    end_lon: 77.5970
    stops: [Majestic, Hebbal]
    speed_limit_kmh: 40
    vehicles: [B12, KA-01-F-1234]
  - id: R9
    start_lat: 12.90
    start_lon: 77.60
    end_lat: 12.95
    end_lon: 77.70
    vehicles: [B7]
`

func TestLoadYAMLRouteProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yml")
	if err := os.WriteFile(path, []byte(catalogue), 0o600); err != nil {
		t.Fatalf("write catalogue: %v", err)
	}

	p, err := LoadYAMLRouteProvider(path)
	if err != nil {
		t.Fatalf("LoadYAMLRouteProvider: %v", err)
	}

	r, err := p.RouteForVehicle(context.Background(), " ka-01-f-1234 ")
	if err != nil {
		t.Fatalf("RouteForVehicle: %v", err)
	}
	if r.ID != "R5" || r.EndLat != 13.0358 || len(r.Stops) != 2 || r.SpeedLimitKmh != 40 {
		t.Fatalf("route = %+v", r)
	}

	// Callers get a copy.
	r.Stops[0] = "changed"
	again, _ := p.RouteForVehicle(context.Background(), "B12")
	if again.Stops[0] != "Majestic" {
		t.Fatalf("catalogue mutated through returned route")
	}

	if _, err := p.RouteForVehicle(context.Background(), "B404"); !errors.Is(err, ports.ErrRouteNotFound) {
		t.Fatalf("unknown vehicle err = %v, want ErrRouteNotFound", err)
	}
}

func TestParseYAMLRoutes_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":         `routes: []`,
		"missing id":    "routes:\n  - start_lat: 1\n    vehicles: [B1]\n",
		"bad latitude":  "routes:\n  - id: R1\n    start_lat: 120\n    vehicles: [B1]\n",
		"duplicate bus": "routes:\n  - id: R1\n    vehicles: [B1]\n  - id: R2\n    vehicles: [b1]\n",
		"not yaml":      "routes: [",
		"blank vehicle": "routes:\n  - id: R1\n    vehicles: ['']\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseYAMLRoutes([]byte(body)); err == nil {
				t.Fatalf("ParseYAMLRoutes accepted %q", body)
			}
		})
	}
}
