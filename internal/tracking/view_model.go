// Package tracking merges the live feed, the fallback poller and the
// downstream lookups into the single view state consumed by map and
// info-card views.
//
// All state is owned by the goroutine running ViewModel.Run. Feed messages,
// poll samples, connectivity changes, timers and lookup completions arrive as
// events on that goroutine and are applied in order, so no field of the
// selection needs locking.
package tracking

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/ports"
	"bus-tracker/internal/services"
)

// DefaultLiveWait bounds how long a fresh selection waits for its first live
// position before polling starts alongside the feed.
const DefaultLiveWait = 10 * time.Second

var (
	ErrNotRunning     = errors.New("tracking: view model is not running")
	ErrAlreadyRunning = errors.New("tracking: view model already running")
	ErrNoVehicleID    = errors.New("tracking: vehicle id is empty")
	errMissingDeps    = errors.New("tracking: feed and poller are required")
)

type Deps struct {
	Feed    ports.PositionFeed
	Poller  *services.FallbackPoller
	Address *services.AddressResolver
	Eta     *services.EtaEstimator
	Net     ports.Connectivity

	LiveWait time.Duration
	Now      func() time.Time
}

// ViewModel is the tracking state machine for one viewer.
type ViewModel struct {
	deps Deps

	cmds    chan command
	results chan lookupResult
	done    chan struct{}
	once    sync.Once

	mu       sync.RWMutex
	state    domain.TrackingViewState
	watchers map[int]chan domain.TrackingViewState
	nextID   int
}

func New(deps Deps) (*ViewModel, error) {
	if deps.Feed == nil || deps.Poller == nil {
		return nil, errMissingDeps
	}
	if deps.LiveWait <= 0 {
		deps.LiveWait = DefaultLiveWait
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &ViewModel{
		deps:     deps,
		cmds:     make(chan command),
		results:  make(chan lookupResult, 8),
		done:     make(chan struct{}),
		state:    domain.NoSelection(),
		watchers: make(map[int]chan domain.TrackingViewState),
	}, nil
}

type command struct {
	vehicleID string
	route     *domain.RouteGeometry
	deselect  bool
	ack       chan struct{}
}

type lookupKind int

const (
	lookupAddress lookupKind = iota
	lookupEta
	lookupCached
)

// lookupResult is an async completion tagged with the selection generation
// and position sequence it was issued for.
type lookupResult struct {
	gen     uint64
	seq     uint64
	kind    lookupKind
	address string
	eta     domain.EtaResult
	pos     domain.Position
	ok      bool
}

// Select starts tracking vehicleID on route, tearing down any previous
// selection first. route may be nil; progress and ETA are then unavailable.
// It blocks until Run has applied the change.
func (v *ViewModel) Select(ctx context.Context, vehicleID string, route *domain.RouteGeometry) error {
	vehicleID = strings.TrimSpace(vehicleID)
	if vehicleID == "" {
		return ErrNoVehicleID
	}
	return v.send(ctx, command{vehicleID: vehicleID, route: route})
}

// Deselect returns to NO_SELECTION and releases every resource.
func (v *ViewModel) Deselect(ctx context.Context) error {
	return v.send(ctx, command{deselect: true})
}

func (v *ViewModel) send(ctx context.Context, cmd command) error {
	cmd.ack = make(chan struct{})

	select {
	case v.cmds <- cmd:
	case <-v.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-cmd.ack:
		return nil
	case <-v.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the latest published view state.
func (v *ViewModel) State() domain.TrackingViewState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Watch delivers every published state; slow readers only see the latest.
func (v *ViewModel) Watch() (<-chan domain.TrackingViewState, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextID
	v.nextID++
	ch := make(chan domain.TrackingViewState, 1)
	ch <- v.state
	v.watchers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.watchers, id)
			v.mu.Unlock()
		})
	}
	return ch, cancel
}

func (v *ViewModel) publish(st domain.TrackingViewState) {
	st.UpdatedAt = v.deps.Now()

	v.mu.Lock()
	defer v.mu.Unlock()

	v.state = st
	for _, ch := range v.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}

// Run owns the event loop until ctx is done. Leaving Run releases the
// current selection and publishes NO_SELECTION.
func (v *ViewModel) Run(ctx context.Context) error {
	first := false
	v.once.Do(func() { first = true })
	if !first {
		return ErrAlreadyRunning
	}
	defer close(v.done)

	var netCh <-chan bool
	if v.deps.Net != nil {
		ch, cancel := v.deps.Net.Watch()
		defer cancel()
		netCh = ch
	}

	var gen uint64
	var s *selection

	defer func() {
		if s != nil {
			s.teardown()
		}
		v.publish(domain.NoSelection())
	}()

	for {
		var ev events
		if s != nil {
			ev = s.events()
		}

		select {
		case <-ctx.Done():
			return nil

		case cmd := <-v.cmds:
			if s != nil {
				s.teardown()
				s = nil
			}
			if cmd.deselect {
				log.Printf("op=tracking.Deselect")
				v.publish(domain.NoSelection())
			} else {
				gen++
				s = v.start(ctx, gen, cmd.vehicleID, cmd.route)
			}
			close(cmd.ack)

		case pos, ok := <-ev.positions:
			if !ok {
				s.feedEnded()
				continue
			}
			s.onLive(pos)

		case err := <-ev.errs:
			s.onFeedError(err)

		case <-ev.liveWait:
			s.onLiveWaitExpired()

		case sample, ok := <-ev.samples:
			if !ok {
				s.samples = nil
				continue
			}
			s.onSample(sample)

		case online := <-netCh:
			if s != nil {
				s.onConnectivity(online)
			}

		case res := <-v.results:
			if s != nil {
				s.onResult(res)
			}
		}
	}
}
