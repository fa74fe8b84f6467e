package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/ports"

	"github.com/gorilla/websocket"
)

// WebSocketFeed implements PositionFeed over {base}/ws/location/{vehicleID}.
// Each Subscribe opens its own connection; there is no reconnect.
type WebSocketFeed struct {
	baseURL   string
	authToken string
	dialer    *websocket.Dialer
}

func NewWebSocketFeed(baseURL, authToken string, handshakeTimeout time.Duration) (*WebSocketFeed, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("websocket feed: base url is empty")
	}

	return &WebSocketFeed{
		baseURL:   baseURL,
		authToken: strings.TrimSpace(authToken),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
	}, nil
}

func (f *WebSocketFeed) endpoint(vehicleID string) string {
	return f.baseURL + "/ws/location/" + url.PathEscape(strings.TrimSpace(vehicleID))
}

func (f *WebSocketFeed) Subscribe(ctx context.Context, vehicleID string) ports.Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &subscription{
		positions: make(chan domain.Position),
		errs:      make(chan error, 1),
		done:      make(chan struct{}),
		cancel:    cancel,
		vehicleID: vehicleID,
	}

	go s.run(ctx, f, f.endpoint(vehicleID))

	return s
}

type subscription struct {
	positions chan domain.Position
	errs      chan error
	done      chan struct{}
	cancel    context.CancelFunc
	vehicleID string

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	errOnce   sync.Once
	closeOnce sync.Once
}

func (s *subscription) Positions() <-chan domain.Position { return s.positions }

func (s *subscription) Errors() <-chan error { return s.errs }

// Close tears the connection down. It never produces an error on Errors.
func (s *subscription) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		conn := s.conn
		s.mu.Unlock()

		close(s.done)
		s.cancel()
		if conn != nil {
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			_ = conn.Close()
		}
	})
}

func (s *subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// fail reports the single transport error unless the subscriber already
// walked away.
func (s *subscription) fail(ctx context.Context, err error) {
	if s.isClosed() || ctx.Err() != nil {
		return
	}
	s.errOnce.Do(func() {
		log.Printf("vehicle_id=%s op=feed.subscription err=%v", s.vehicleID, err)
		s.errs <- err
	})
}

func (s *subscription) run(ctx context.Context, f *WebSocketFeed, endpoint string) {
	defer close(s.positions)

	header := http.Header{}
	if f.authToken != "" {
		header.Set("Authorization", "Bearer "+f.authToken)
	}

	conn, resp, err := f.dialer.DialContext(ctx, endpoint, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		s.fail(ctx, fmt.Errorf("dial %s: %w", endpoint, err))
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return
			}
			s.fail(ctx, fmt.Errorf("read %s: %w", endpoint, err))
			_ = conn.Close()
			return
		}

		pos, ok := decodePosition(msg)
		if !ok {
			continue
		}

		select {
		case s.positions <- pos:
		case <-s.done:
			return
		}
	}
}

type wireMessage struct {
	Latitude  *float64        `json:"latitude"`
	Longitude *float64        `json:"longitude"`
	Speed     json.RawMessage `json:"speed"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// decodePosition accepts a JSON object with numeric latitude and longitude.
// Anything else is dropped.
func decodePosition(msg []byte) (domain.Position, bool) {
	var m wireMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		return domain.Position{}, false
	}
	if m.Latitude == nil || m.Longitude == nil {
		return domain.Position{}, false
	}

	pos := domain.Position{Latitude: *m.Latitude, Longitude: *m.Longitude}

	var speed float64
	if present(m.Speed) && json.Unmarshal(m.Speed, &speed) == nil && !math.IsNaN(speed) && speed >= 0 {
		pos.Speed = &speed
	}

	var ts string
	var tsNum float64
	if present(m.Timestamp) {
		if json.Unmarshal(m.Timestamp, &ts) == nil {
			pos.Timestamp = ts
		} else if json.Unmarshal(m.Timestamp, &tsNum) == nil {
			pos.Timestamp = strconv.FormatFloat(tsNum, 'f', -1, 64)
		}
	}

	return pos, true
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
