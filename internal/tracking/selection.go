package tracking

import (
	"context"
	"log"
	"time"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/geo"
	"bus-tracker/internal/platform/obs"
	"bus-tracker/internal/ports"
	"bus-tracker/internal/services"
)

// selection owns every resource of one tracked vehicle: the feed
// subscription, the poll loop, the live-wait timer and in-flight lookups.
// teardown releases all of them.
type selection struct {
	vm        *ViewModel
	gen       uint64
	vehicleID string
	route     *domain.RouteGeometry

	ctx    context.Context
	cancel context.CancelFunc

	sub       ports.Subscription
	positions <-chan domain.Position
	errs      <-chan error
	feedDown  bool

	polling *services.Polling
	samples <-chan services.PollSample

	liveTimer *time.Timer
	liveWait  <-chan time.Time

	seq           uint64
	lookupCancel  context.CancelFunc
	offlineAtSeq  uint64
	awaitingCache bool

	state domain.TrackingViewState
}

type events struct {
	positions <-chan domain.Position
	errs      <-chan error
	liveWait  <-chan time.Time
	samples   <-chan services.PollSample
}

func (s *selection) events() events {
	return events{
		positions: s.positions,
		errs:      s.errs,
		liveWait:  s.liveWait,
		samples:   s.samples,
	}
}

func (v *ViewModel) start(parent context.Context, gen uint64, vehicleID string, route *domain.RouteGeometry) *selection {
	ctx, cancel := context.WithCancel(obs.WithSessionID(parent))

	s := &selection{
		vm:        v,
		gen:       gen,
		vehicleID: vehicleID,
		route:     route,
		ctx:       ctx,
		cancel:    cancel,
		state: domain.TrackingViewState{
			VehicleID: vehicleID,
			Mode:      domain.ModeLive,
			Eta:       domain.EtaUnavailable(),
		},
	}

	sub := v.deps.Feed.Subscribe(ctx, vehicleID)
	s.sub = sub
	s.positions = sub.Positions()
	s.errs = sub.Errors()
	s.armLiveWait()

	log.Printf("session_id=%s vehicle_id=%s mode=%s op=tracking.Select", obs.SessionID(ctx), vehicleID, domain.ModeLive)
	v.publish(s.state)

	if v.deps.Net != nil && !v.deps.Net.Online() {
		s.onConnectivity(false)
	}

	return s
}

func (s *selection) logf(format string, args ...any) {
	log.Printf("session_id=%s vehicle_id=%s "+format, append([]any{obs.SessionID(s.ctx), s.vehicleID}, args...)...)
}

func (s *selection) armLiveWait() {
	s.stopLiveWait()
	s.liveTimer = time.NewTimer(s.vm.deps.LiveWait)
	s.liveWait = s.liveTimer.C
}

func (s *selection) stopLiveWait() {
	if s.liveTimer != nil {
		s.liveTimer.Stop()
	}
	s.liveTimer = nil
	s.liveWait = nil
}

// onLive handles a position from the push feed. Live data always wins: a
// running poll loop started by the live-wait timeout is stopped.
func (s *selection) onLive(pos domain.Position) {
	if !pos.Valid() {
		return
	}

	s.stopLiveWait()
	if s.state.Mode == domain.ModeFallbackPolling && !s.feedDown {
		s.stopPolling()
		s.state.Mode = domain.ModeLive
		s.logf("mode=%s reason=live_recovered", domain.ModeLive)
	}

	s.accept(pos, true, false)
}

// feedEnded handles the push stream closing. A pending error is picked up
// from errs on the next loop pass; a clean close re-arms the live wait so
// polling takes over if nothing else arrives.
func (s *selection) feedEnded() {
	s.positions = nil
	if s.feedDown || s.polling != nil {
		return
	}
	s.logf("op=tracking.feed closed=normal")
	s.armLiveWait()
}

// onFeedError moves to FALLBACK_POLLING for the rest of this selection.
// The push feed is not reopened.
func (s *selection) onFeedError(err error) {
	s.errs = nil
	if s.feedDown {
		return
	}
	s.feedDown = true

	s.sub.Close()
	s.positions = nil
	s.stopLiveWait()

	s.logf("mode=%s reason=feed_error err=%v", domain.ModeFallbackPolling, err)
	s.startPolling()
}

func (s *selection) onLiveWaitExpired() {
	s.liveTimer = nil
	s.liveWait = nil

	s.logf("mode=%s reason=live_wait_expired wait=%s", domain.ModeFallbackPolling, s.vm.deps.LiveWait)
	s.startPolling()
}

// startPolling is idempotent for the lifetime of the selection.
func (s *selection) startPolling() {
	if s.polling == nil {
		s.polling = s.vm.deps.Poller.Start(s.ctx, s.vehicleID)
		s.samples = s.polling.Samples()
	}

	if s.state.Mode != domain.ModeFallbackPolling {
		s.state.Mode = domain.ModeFallbackPolling
		s.state.IsLive = false
		s.vm.publish(s.state)
	}
}

func (s *selection) stopPolling() {
	if s.polling != nil {
		s.polling.Stop()
	}
	s.polling = nil
	s.samples = nil
}

func (s *selection) onSample(sample services.PollSample) {
	if s.state.Mode != domain.ModeFallbackPolling {
		return
	}
	if !sample.Position.Valid() {
		return
	}
	if sample.Offline {
		s.serveCached(sample.Position)
		return
	}
	s.accept(sample.Position, false, false)
}

// onConnectivity serves the last-known-good entry when the client drops
// offline. The cache read is async; it only applies if no fresher position
// arrived in the meantime.
func (s *selection) onConnectivity(online bool) {
	if online {
		return
	}

	s.offlineAtSeq = s.seq
	s.awaitingCache = true

	ctx, gen, seq, poller, vehicleID, results := s.ctx, s.gen, s.seq, s.vm.deps.Poller, s.vehicleID, s.vm.results
	go func() {
		pos, err := poller.Cached(ctx, vehicleID)
		res := lookupResult{gen: gen, seq: seq, kind: lookupCached, pos: pos, ok: err == nil}
		select {
		case results <- res:
		case <-ctx.Done():
		}
	}()
}

// accept applies a fresh or cached position: progress synchronously,
// address and ETA asynchronously. In-flight lookups for the previous
// position are cancelled and their results ignored. A repeat of the report
// already on screen only updates the flags.
func (s *selection) accept(pos domain.Position, live, offline bool) {
	if !offline {
		s.awaitingCache = false
	}

	p := pos
	repeat := s.state.Position != nil && s.state.Position.Key() == p.Key()
	if !repeat {
		s.seq++
	}

	progress := services.ClassifyProgress(&p, s.route)

	if prev := s.state.Position; prev != nil && prev.Coordinates() != p.Coordinates() {
		from, to := prev.Coordinates(), p.Coordinates()
		heading := geo.BearingDegrees(from.Lat, from.Lon, to.Lat, to.Lon)
		s.state.HeadingDegrees = &heading
	}
	s.state.RemainingKm = nil
	if s.route != nil {
		here, end := p.Coordinates(), s.route.End()
		km := geo.DistanceKm(here.Lat, here.Lon, end.Lat, end.Lon)
		s.state.RemainingKm = &km
	}

	s.state.Position = &p
	s.state.TripProgress = progress.TripProgress
	s.state.UpcomingStop = progress.UpcomingStop
	s.state.IsLive = live
	s.state.IsOffline = offline
	s.vm.publish(s.state)

	if repeat {
		return
	}
	if live && s.online() {
		s.remember(p)
	}
	s.lookups(p)
}

func (s *selection) online() bool {
	return s.vm.deps.Net == nil || s.vm.deps.Net.Online()
}

// remember refreshes the last-known-good entry with a live position. Poll
// samples are written by the poller itself.
func (s *selection) remember(pos domain.Position) {
	ctx, poller, vehicleID := s.ctx, s.vm.deps.Poller, s.vehicleID
	go poller.Remember(ctx, vehicleID, pos)
}

// serveCached shows the last-known-good entry while offline. The entry may
// predate what is already on screen (an earlier session, or a live write
// that has not landed yet); then the newer position stays and is only
// flagged as offline.
func (s *selection) serveCached(pos domain.Position) {
	cur := s.state.Position
	if cur == nil || pos.ReportedAfter(*cur) {
		s.accept(pos, false, true)
		return
	}
	if s.state.IsOffline && !s.state.IsLive {
		return
	}
	s.state.IsLive = false
	s.state.IsOffline = true
	s.vm.publish(s.state)
}

func (s *selection) lookups(pos domain.Position) {
	if s.lookupCancel != nil {
		s.lookupCancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.lookupCancel = cancel

	gen, seq, route, results := s.gen, s.seq, s.route, s.vm.results
	deliver := func(res lookupResult) {
		select {
		case results <- res:
		case <-ctx.Done():
		}
	}

	if resolver := s.vm.deps.Address; resolver != nil {
		go func() {
			label := resolver.Resolve(ctx, &pos)
			deliver(lookupResult{gen: gen, seq: seq, kind: lookupAddress, address: label})
		}()
	}

	if estimator := s.vm.deps.Eta; estimator != nil {
		go func() {
			eta := estimator.Estimate(ctx, &pos, route, pos.Speed)
			deliver(lookupResult{gen: gen, seq: seq, kind: lookupEta, eta: eta})
		}()
	}
}

func (s *selection) onResult(res lookupResult) {
	if res.gen != s.gen {
		return
	}

	switch res.kind {
	case lookupCached:
		if !res.ok || !s.awaitingCache || s.seq != s.offlineAtSeq {
			return
		}
		if s.online() {
			return
		}
		s.awaitingCache = false
		s.serveCached(res.pos)

	case lookupAddress:
		if res.seq != s.seq {
			return
		}
		s.state.ResolvedAddress = res.address
		s.vm.publish(s.state)

	case lookupEta:
		if res.seq != s.seq {
			return
		}
		s.state.Eta = res.eta
		s.vm.publish(s.state)
	}
}

func (s *selection) teardown() {
	if s.lookupCancel != nil {
		s.lookupCancel()
	}
	s.stopLiveWait()
	s.sub.Close()
	s.stopPolling()
	s.cancel()

	s.logf("op=tracking.teardown")
}
