package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"bus-tracker/internal/api/dto"
	"bus-tracker/internal/domain"
	"bus-tracker/internal/ports"
	"bus-tracker/internal/tracking"
)

// Tracker is the subset of the tracking view model the API drives.
type Tracker interface {
	State() domain.TrackingViewState
	Select(ctx context.Context, vehicleID string, route *domain.RouteGeometry) error
	Deselect(ctx context.Context) error
}

type TrackingHandler struct {
	Tracker Tracker
	Routes  ports.RouteProvider
}

// State serves GET (current view state) and DELETE (deselect) on /tracking.
func (h *TrackingHandler) State(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, r, http.StatusOK, dto.FromViewState(h.Tracker.State()))

	case http.MethodDelete:
		if err := h.Tracker.Deselect(r.Context()); err != nil {
			log.Printf("tracking deselect failed: err=%v", err)
			writeError(w, r, statusFor(err), "failed to deselect vehicle")
			return
		}
		writeJSON(w, r, http.StatusOK, dto.FromViewState(h.Tracker.State()))

	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodDelete)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// Select starts tracking the requested vehicle on its catalogued route.
// A vehicle without a route is still tracked; progress and ETA stay empty.
func (h *TrackingHandler) Select(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SelectRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	vehicleID := strings.TrimSpace(req.VehicleID)
	if vehicleID == "" {
		writeError(w, r, http.StatusBadRequest, "vehicle_id is required")
		return
	}

	var route *domain.RouteGeometry
	if h.Routes != nil {
		var err error
		route, err = h.Routes.RouteForVehicle(r.Context(), vehicleID)
		if err != nil {
			if !errors.Is(err, ports.ErrRouteNotFound) {
				log.Printf("route lookup failed: vehicle_id=%s err=%v", vehicleID, err)
				writeError(w, r, http.StatusInternalServerError, "failed to load route")
				return
			}
			log.Printf("vehicle_id=%s no route in catalogue, tracking without route", vehicleID)
		}
	}

	if err := h.Tracker.Select(r.Context(), vehicleID, route); err != nil {
		log.Printf("tracking select failed: vehicle_id=%s err=%v", vehicleID, err)
		writeError(w, r, statusFor(err), "failed to select vehicle")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromViewState(h.Tracker.State()))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tracking.ErrNoVehicleID):
		return http.StatusBadRequest
	case errors.Is(err, tracking.ErrNotRunning):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
