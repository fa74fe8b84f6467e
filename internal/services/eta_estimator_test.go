package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/ports"
)

type stubEtaProvider struct {
	resp ports.EtaResponse
	err  error
	last ports.EtaRequest
}

func (s *stubEtaProvider) Estimate(ctx context.Context, req ports.EtaRequest) (ports.EtaResponse, error) {
	s.last = req
	return s.resp, s.err
}

func ptr(f float64) *float64 { return &f }

func TestEtaEstimatorEstimate(t *testing.T) {
	p := &stubEtaProvider{resp: ports.EtaResponse{EtaMinutes: ptr(7.5), UsedSpeed: ptr(40)}}
	est := NewEtaEstimator(p)

	pos := &domain.Position{Latitude: 0, Longitude: 0.5}
	got := est.Estimate(context.Background(), pos, testRoute(), ptr(0))

	if got.EtaMinutes == nil || *got.EtaMinutes != 7.5 {
		t.Fatalf("EtaMinutes = %v, want 7.5", got.EtaMinutes)
	}
	if got.UsedSpeedKmh == nil || *got.UsedSpeedKmh != 40 {
		t.Fatalf("UsedSpeedKmh = %v, want 40", got.UsedSpeedKmh)
	}
	if p.last.RouteID != "R1" || p.last.Lon != 0.5 {
		t.Fatalf("unexpected request %+v", p.last)
	}
	if p.last.Speed == nil || *p.last.Speed != 0 {
		t.Fatalf("Speed = %v, want 0", p.last.Speed)
	}
}

func TestEtaEstimatorUnavailable(t *testing.T) {
	pos := &domain.Position{Latitude: 0, Longitude: 0.5}

	cases := []struct {
		name string
		p    *stubEtaProvider
	}{
		{"null eta", &stubEtaProvider{resp: ports.EtaResponse{UsedSpeed: ptr(30)}}},
		{"service error", &stubEtaProvider{err: errors.New("503")}},
		{"nan eta", &stubEtaProvider{resp: ports.EtaResponse{EtaMinutes: ptr(math.NaN())}}},
		{"negative eta", &stubEtaProvider{resp: ports.EtaResponse{EtaMinutes: ptr(-1)}}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := NewEtaEstimator(c.p).Estimate(context.Background(), pos, testRoute(), nil)
			if got.EtaMinutes != nil || got.UsedSpeedKmh != nil {
				t.Fatalf("got %+v, want unavailable", got)
			}
		})
	}
}

func TestEtaEstimatorMissingInputs(t *testing.T) {
	p := &stubEtaProvider{resp: ports.EtaResponse{EtaMinutes: ptr(1)}}
	est := NewEtaEstimator(p)

	if got := est.Estimate(context.Background(), nil, testRoute(), nil); got.Available() {
		t.Fatal("expected unavailable without position")
	}
	pos := &domain.Position{Latitude: 1, Longitude: 1}
	if got := est.Estimate(context.Background(), pos, nil, nil); got.Available() {
		t.Fatal("expected unavailable without route")
	}
}
