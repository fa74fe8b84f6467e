package netstate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMonitorSetNotifiesWatchers(t *testing.T) {
	m := NewMonitor("", 0)
	if !m.Online() {
		t.Fatal("monitor should start online")
	}

	ch, cancel := m.Watch()
	defer cancel()

	m.Set(false)
	select {
	case v := <-ch:
		if v {
			t.Fatal("expected offline notification")
		}
	case <-time.After(time.Second):
		t.Fatal("no notification")
	}

	// Unchanged state does not notify.
	m.Set(false)
	select {
	case v := <-ch:
		t.Fatalf("unexpected notification %v", v)
	default:
	}
}

func TestMonitorWatchCancel(t *testing.T) {
	m := NewMonitor("", 0)
	ch, cancel := m.Watch()
	cancel()
	cancel()

	m.Set(false)
	select {
	case v := <-ch:
		t.Fatalf("cancelled watcher got %v", v)
	default:
	}
}

func TestMonitorRunProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	url := srv.URL
	srv.Close()

	m := NewMonitor(url, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	deadline := time.After(2 * time.Second)
	for m.Online() {
		select {
		case <-deadline:
			t.Fatal("monitor never went offline for a closed server")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
