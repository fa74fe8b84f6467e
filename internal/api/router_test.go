package api

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"bus-tracker/internal/adapters/routes"
	"bus-tracker/internal/domain"
)

type stubTracker struct {
	state domain.TrackingViewState
	route *domain.RouteGeometry
}

func (s *stubTracker) State() domain.TrackingViewState { return s.state }

func (s *stubTracker) Select(ctx context.Context, vehicleID string, route *domain.RouteGeometry) error {
	s.route = route
	s.state = domain.TrackingViewState{VehicleID: vehicleID, Mode: domain.ModeLive, Eta: domain.EtaUnavailable()}
	return nil
}

func (s *stubTracker) Deselect(ctx context.Context) error {
	s.state = domain.NoSelection()
	return nil
}

const catalogue = `
routes:
  - id: R5
    start_lat: 12.97
    start_lon: 77.59
    end_lat: 13.03
    end_lon: 77.59
    stops: [Majestic]
    vehicles: [B12]
`

func TestRouter_SelectAndRead(t *testing.T) {
	provider, err := routes.ParseYAMLRoutes([]byte(catalogue))
	if err != nil {
		t.Fatalf("ParseYAMLRoutes: %v", err)
	}

	tracker := &stubTracker{state: domain.NoSelection()}
	srv := httptest.NewServer(NewRouter(tracker, provider))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/tracking/select", "application/json", strings.NewReader(`{"vehicle_id": "b12"}`))
	if err != nil {
		t.Fatalf("POST /tracking/select: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if tracker.route == nil || tracker.route.ID != "R5" {
		t.Fatalf("route = %+v, want R5", tracker.route)
	}

	resp, err = http.Get(srv.URL + "/tracking")
	if err != nil {
		t.Fatalf("GET /tracking: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRouter_UnknownPath(t *testing.T) {
	srv := httptest.NewServer(NewRouter(&stubTracker{}, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/packages")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestLoggingMiddleware_LogsAndRecovers(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	h := loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tracking", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	out := buf.String()
	if !strings.Contains(out, "panic=boom") || !strings.Contains(out, "status=500") || !strings.Contains(out, "session_id=") {
		t.Fatalf("log = %q", out)
	}
}
