package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/platform/obs"
	"bus-tracker/internal/ports"
)

// DefaultPollInterval is the fixed fallback polling period.
const DefaultPollInterval = 15 * time.Second

// PollSample is one position produced by the fallback path. Offline marks a
// position served from the last-known-good cache rather than a fresh lookup.
type PollSample struct {
	Position domain.Position
	Offline  bool
}

// FallbackPoller looks a vehicle up in the bulk position lookup on a fixed
// interval while the push feed is unavailable, and keeps the last-known-good
// cache current for offline use.
//
// Lookup failures are logged and skipped; polling continues on the next tick
// without backoff.
type FallbackPoller struct {
	lookup   ports.VehicleLookup
	cache    ports.PositionCache
	net      ports.Connectivity
	interval time.Duration
}

func NewFallbackPoller(
	lookup ports.VehicleLookup,
	cache ports.PositionCache,
	net ports.Connectivity,
	interval time.Duration,
) *FallbackPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &FallbackPoller{
		lookup:   lookup,
		cache:    cache,
		net:      net,
		interval: interval,
	}
}

// Polling is a running poll loop for one vehicle.
type Polling struct {
	samples chan PollSample
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// Samples is closed once the loop has stopped.
func (p *Polling) Samples() <-chan PollSample { return p.samples }

// Stop ends the loop and waits for it to exit. Safe to call more than once.
func (p *Polling) Stop() {
	p.once.Do(p.cancel)
	<-p.done
}

// Start polls immediately and then on every interval until Stop is called or
// ctx is done.
func (f *FallbackPoller) Start(ctx context.Context, vehicleID string) *Polling {
	ctx, cancel := context.WithCancel(ctx)
	p := &Polling{
		samples: make(chan PollSample, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go f.run(ctx, vehicleID, p)

	return p
}

func (f *FallbackPoller) run(ctx context.Context, vehicleID string, p *Polling) {
	defer close(p.done)
	defer close(p.samples)

	log.Printf("session_id=%s vehicle_id=%s fallback polling started interval=%s", obs.SessionID(ctx), vehicleID, f.interval)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		if sample, ok := f.Poll(ctx, vehicleID); ok {
			select {
			case p.samples <- sample:
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			log.Printf("session_id=%s vehicle_id=%s fallback polling stopped", obs.SessionID(ctx), vehicleID)
			return
		}
	}
}

// Poll performs a single fallback read for vehicleID.
// While offline it serves the cached position; otherwise it looks the vehicle
// up and refreshes the cache. ok is false when nothing usable was found.
func (f *FallbackPoller) Poll(ctx context.Context, vehicleID string) (_ PollSample, ok bool) {
	if f.net != nil && !f.net.Online() {
		pos, err := f.Cached(ctx, vehicleID)
		if err != nil {
			if !errors.Is(err, ports.ErrCacheMiss) {
				log.Printf("vehicle_id=%s read position cache failed: %v", vehicleID, err)
			}
			return PollSample{}, false
		}
		return PollSample{Position: pos, Offline: true}, true
	}

	if f.lookup == nil {
		return PollSample{}, false
	}

	var err error
	defer obs.Time(ctx, "poller.LookupAll")(&err)

	var records []domain.VehicleRecord
	records, err = f.lookup.LookupAll(ctx)
	if err != nil {
		return PollSample{}, false
	}

	pos, found := findVehicle(records, vehicleID)
	if !found {
		log.Printf("vehicle_id=%s not present in bulk lookup (%d records)", vehicleID, len(records))
		return PollSample{}, false
	}

	f.Remember(ctx, vehicleID, pos)

	return PollSample{Position: pos}, true
}

// Remember records pos as the last-known-good entry for vehicleID. Invalid
// positions are ignored and write failures are logged.
func (f *FallbackPoller) Remember(ctx context.Context, vehicleID string, pos domain.Position) {
	if f.cache == nil || !pos.Valid() {
		return
	}
	if err := f.cache.Put(ctx, vehicleID, pos); err != nil {
		log.Printf("vehicle_id=%s write position cache failed: %v", vehicleID, err)
	}
}

// Cached returns the last-known-good position for vehicleID.
func (f *FallbackPoller) Cached(ctx context.Context, vehicleID string) (domain.Position, error) {
	if f.cache == nil {
		return domain.Position{}, ports.ErrCacheMiss
	}
	return f.cache.Get(ctx, vehicleID)
}

func findVehicle(records []domain.VehicleRecord, vehicleID string) (domain.Position, bool) {
	for _, rec := range records {
		if rec.Matches(vehicleID) && rec.Position.Valid() {
			return rec.Position, true
		}
	}
	return domain.Position{}, false
}
