package obs

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

type ctxKey string

const SessionIDKey ctxKey = "session_id"

// WithSessionID tags ctx with a fresh tracking session id.
func WithSessionID(ctx context.Context) context.Context {
	return context.WithValue(ctx, SessionIDKey, uuid.NewString())
}

// SessionID returns the session id carried by ctx, if any.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}

// Time logs the duration of an operation when the returned func is called.
// Pass a pointer to the named error result to log failures.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	sessionID := SessionID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("session_id=%s op=%s dur=%dms err=%v", sessionID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("session_id=%s op=%s dur=%dms", sessionID, name, dur.Milliseconds())
	}
}
