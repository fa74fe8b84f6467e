package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"bus-tracker/internal/platform/obs"
)

// writeJSON encodes v as the response body. Tracking state changes by the
// second, so nothing is cacheable.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("session_id=%s encode failed: method=%s path=%s err=%v", obs.SessionID(r.Context()), r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}
