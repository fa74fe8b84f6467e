package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/platform/httpx"
	"bus-tracker/internal/platform/obs"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// m/s to km/h.
const msToKmh = 3.6

// GTFSRTLookup implements VehicleLookup by reading a GTFS-Realtime
// VehiclePositions feed.
type GTFSRTLookup struct {
	client *httpx.Client
	url    string
}

func NewGTFSRTLookup(feedURL string, timeout time.Duration) (*GTFSRTLookup, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, errors.New("gtfsrt lookup: vehicle positions url is empty")
	}

	return &GTFSRTLookup{
		client: httpx.NewClient(timeout, httpx.WithHeader("Accept", "application/x-protobuf")),
		url:    feedURL,
	}, nil
}

func (g *GTFSRTLookup) LookupAll(ctx context.Context) (_ []domain.VehicleRecord, err error) {
	defer obs.Time(ctx, "lookup.gtfsrt.LookupAll")(&err)

	body, err := g.client.GetBytes(ctx, g.url)
	if err != nil {
		return nil, fmt.Errorf("fetch vehicle positions: %w", err)
	}

	fm := &gtfsrtpb.FeedMessage{}
	if err := proto.Unmarshal(body, fm); err != nil {
		return nil, fmt.Errorf("decode vehicle positions: %w", err)
	}

	return vehicleRecords(fm), nil
}

func vehicleRecords(fm *gtfsrtpb.FeedMessage) []domain.VehicleRecord {
	out := make([]domain.VehicleRecord, 0, len(fm.GetEntity()))
	for _, e := range fm.GetEntity() {
		vp := e.GetVehicle()
		if vp == nil || vp.GetPosition() == nil {
			continue
		}

		var rec domain.VehicleRecord
		for _, id := range []string{vp.GetVehicle().GetId(), vp.GetVehicle().GetLabel(), e.GetId()} {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if rec.ID == "" {
				rec.ID = id
			}
			rec.Aliases = append(rec.Aliases, id)
		}
		if rec.ID == "" {
			continue
		}

		p := vp.GetPosition()
		rec.Position = domain.Position{
			Latitude:  float64(p.GetLatitude()),
			Longitude: float64(p.GetLongitude()),
		}
		if p.Speed != nil {
			kmh := float64(p.GetSpeed()) * msToKmh
			rec.Position.Speed = &kmh
		}
		if vp.Timestamp != nil {
			rec.Position.Timestamp = time.Unix(int64(vp.GetTimestamp()), 0).UTC().Format(time.RFC3339)
		}

		out = append(out, rec)
	}
	return out
}
