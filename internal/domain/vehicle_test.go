package domain

import "testing"

func TestVehicleRecordMatches(t *testing.T) {
	rec := VehicleRecord{ID: "12", Aliases: []string{"12", "KA-01-F-1234"}}

	cases := []struct {
		id   string
		want bool
	}{
		{"12", true},
		{" 12 ", true},
		{"ka-01-f-1234", true},
		{"13", false},
		{"", false},
	}

	for _, c := range cases {
		if got := rec.Matches(c.id); got != c.want {
			t.Errorf("Matches(%q) = %v, want %v", c.id, got, c.want)
		}
	}
}

func TestEtaResultDisplay(t *testing.T) {
	if got := EtaUnavailable().MinutesDisplay(); got != NotAvailable {
		t.Fatalf("MinutesDisplay = %q, want %q", got, NotAvailable)
	}

	eta, speed := 12.4, 38.0
	res := EtaResult{EtaMinutes: &eta, UsedSpeedKmh: &speed}
	if got := res.MinutesDisplay(); got != "12 min" {
		t.Fatalf("MinutesDisplay = %q, want %q", got, "12 min")
	}
	if got := res.SpeedDisplay(); got != "38.0 km/h" {
		t.Fatalf("SpeedDisplay = %q, want %q", got, "38.0 km/h")
	}
}

func TestPositionValid(t *testing.T) {
	if !(Position{Latitude: 12.97, Longitude: 77.59}).Valid() {
		t.Fatal("expected valid position")
	}
	if (Position{Latitude: 91, Longitude: 0}).Valid() {
		t.Fatal("latitude 91 should be invalid")
	}
}

func TestPositionReportedAfter(t *testing.T) {
	at := func(ts string) Position { return Position{Timestamp: ts} }

	cases := []struct {
		name string
		p, q Position
		want bool
	}{
		{"later", at("2026-10-19T10:00:05Z"), at("2026-10-19T10:00:00Z"), true},
		{"earlier", at("2026-10-19T09:59:00Z"), at("2026-10-19T10:00:00Z"), false},
		{"equal", at("2026-10-19T10:00:00Z"), at("2026-10-19T10:00:00Z"), false},
		{"offset zones", at("2026-10-19T12:00:01+02:00"), at("2026-10-19T10:00:00Z"), true},
		{"missing own", at(""), at("2026-10-19T10:00:00Z"), false},
		{"missing other", at("2026-10-19T10:00:00Z"), at(""), false},
		{"garbage", at("yesterday"), at("2026-10-19T10:00:00Z"), false},
	}

	for _, c := range cases {
		if got := c.p.ReportedAfter(c.q); got != c.want {
			t.Errorf("%s: ReportedAfter = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestPositionKey(t *testing.T) {
	speed := 12.5
	a := Position{Latitude: 1, Longitude: 2, Speed: &speed, Timestamp: "2026-10-19T10:00:00Z"}
	b := a
	other := 12.5
	b.Speed = &other

	if a.Key() != b.Key() {
		t.Fatalf("Key differs for identical reports: %q vs %q", a.Key(), b.Key())
	}

	b.Timestamp = "2026-10-19T10:00:01Z"
	if a.Key() == b.Key() {
		t.Fatalf("Key equal for reports with different timestamps: %q", a.Key())
	}

	if (Position{Latitude: 1, Longitude: 2}).Key() == (Position{Latitude: 1, Longitude: 2, Speed: &speed}).Key() {
		t.Fatalf("Key ignores speed")
	}
}
