package domain

// RouteGeometry is the straight start/end description of a route plus its
// ordered stop list. It is owned by the route data provider and read-only here.
type RouteGeometry struct {
	ID            string   `json:"id" yaml:"id" validate:"required"`
	StartLat      float64  `json:"start_lat" yaml:"start_lat" validate:"gte=-90,lte=90"`
	StartLon      float64  `json:"start_lon" yaml:"start_lon" validate:"gte=-180,lte=180"`
	EndLat        float64  `json:"end_lat" yaml:"end_lat" validate:"gte=-90,lte=90"`
	EndLon        float64  `json:"end_lon" yaml:"end_lon" validate:"gte=-180,lte=180"`
	Stops         []string `json:"stops" yaml:"stops"`
	SpeedLimitKmh float64  `json:"speed_limit_kmh" yaml:"speed_limit_kmh" validate:"gte=0"`
}

func (r RouteGeometry) Start() Coordinates { return Coordinates{Lat: r.StartLat, Lon: r.StartLon} }

func (r RouteGeometry) End() Coordinates { return Coordinates{Lat: r.EndLat, Lon: r.EndLon} }
