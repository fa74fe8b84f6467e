package api

import (
	"net/http"

	"bus-tracker/internal/api/handlers"
	"bus-tracker/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(tracker handlers.Tracker, routes ports.RouteProvider) http.Handler {
	mux := http.NewServeMux()

	trackingHandler := &handlers.TrackingHandler{
		Tracker: tracker,
		Routes:  routes,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/tracking", trackingHandler.State)
	mux.HandleFunc("/tracking/select", trackingHandler.Select)

	return loggingMiddleware(mux)
}
