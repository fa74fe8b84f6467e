// Package netstate tracks whether the client can currently reach the network.
package netstate

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"
)

// Monitor holds the current online/offline state and fans out changes.
// The state is driven either by Run (HTTP probe) or by Set.
type Monitor struct {
	probeURL string
	interval time.Duration
	client   *http.Client

	mu       sync.Mutex
	online   bool
	watchers map[int]chan bool
	nextID   int
}

// NewMonitor starts in the online state.
func NewMonitor(probeURL string, interval time.Duration) *Monitor {
	return &Monitor{
		probeURL: probeURL,
		interval: interval,
		client:   &http.Client{Timeout: 5 * time.Second},
		online:   true,
		watchers: make(map[int]chan bool),
	}
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set records the state and notifies watchers when it changed.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.online == online {
		return
	}
	m.online = online

	for _, ch := range m.watchers {
		// Watchers only care about the latest value.
		select {
		case <-ch:
		default:
		}
		ch <- online
	}
}

func (m *Monitor) Watch() (<-chan bool, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan bool, 1)
	m.watchers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.watchers, id)
			m.mu.Unlock()
		})
	}
	return ch, cancel
}

// Run probes the configured URL every interval until ctx is done.
// A probe succeeds on any HTTP response; only transport failures count as offline.
func (m *Monitor) Run(ctx context.Context) {
	if m.probeURL == "" || m.interval <= 0 {
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-ticker.C:
			m.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		log.Printf("netstate: build probe request url=%s err=%v", m.probeURL, err)
		return
	}

	resp, err := m.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if m.Online() {
			log.Printf("netstate: offline url=%s err=%v", m.probeURL, err)
		}
		m.Set(false)
		return
	}
	resp.Body.Close()

	if !m.Online() {
		log.Printf("netstate: online url=%s", m.probeURL)
	}
	m.Set(true)
}
