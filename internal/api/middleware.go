package api

import (
	"log"
	"net/http"
	"time"

	"bus-tracker/internal/platform/obs"
)

// statusWriter records the status code and body size a handler produced.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// loggingMiddleware tags each request with a session id, turns handler panics
// into 500s and writes one access log line per request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := obs.WithSessionID(r.Context())
		r = r.WithContext(ctx)
		sw := &statusWriter{ResponseWriter: w}

		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("session_id=%s method=%s path=%s panic=%v", obs.SessionID(ctx), r.Method, r.URL.Path, rec)
				if sw.status == 0 {
					http.Error(sw, `{"error":"internal error"}`, http.StatusInternalServerError)
				}
			}

			log.Printf(
				"session_id=%s method=%s path=%s status=%d bytes=%d dur=%dms",
				obs.SessionID(ctx), r.Method, r.URL.RequestURI(), sw.status, sw.bytes, time.Since(start).Milliseconds(),
			)
		}()

		next.ServeHTTP(sw, r)
	})
}
