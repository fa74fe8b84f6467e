package routes

import (
	"context"
	"fmt"
	"os"
	"strings"

	"bus-tracker/internal/domain"
	"bus-tracker/internal/ports"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Catalogue is the on-disk route file: every route with the vehicles
// currently assigned to it.
type Catalogue struct {
	Routes []CatalogueRoute `yaml:"routes" validate:"required,min=1,dive"`
}

type CatalogueRoute struct {
	domain.RouteGeometry `yaml:",inline"`
	Vehicles             []string `yaml:"vehicles" validate:"dive,required"`
}

// YAMLRouteProvider serves RouteGeometry from a static catalogue loaded once.
type YAMLRouteProvider struct {
	byVehicle map[string]*domain.RouteGeometry
}

// LoadYAMLRouteProvider reads and validates the catalogue at path.
func LoadYAMLRouteProvider(path string) (*YAMLRouteProvider, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load routes: read %q: %w", path, err)
	}
	return ParseYAMLRoutes(b)
}

func ParseYAMLRoutes(b []byte) (*YAMLRouteProvider, error) {
	var cat Catalogue
	if err := yaml.Unmarshal(b, &cat); err != nil {
		return nil, fmt.Errorf("load routes: parse yaml: %w", err)
	}

	if err := validator.New().Struct(cat); err != nil {
		return nil, fmt.Errorf("load routes: validate: %w", err)
	}

	p := &YAMLRouteProvider{byVehicle: map[string]*domain.RouteGeometry{}}
	for i := range cat.Routes {
		route := cat.Routes[i].RouteGeometry
		for _, v := range cat.Routes[i].Vehicles {
			key := normalizeVehicleID(v)
			if prev, ok := p.byVehicle[key]; ok {
				return nil, fmt.Errorf("load routes: vehicle %q assigned to both %q and %q", v, prev.ID, route.ID)
			}
			p.byVehicle[key] = &route
		}
	}

	return p, nil
}

func (p *YAMLRouteProvider) RouteForVehicle(ctx context.Context, vehicleID string) (*domain.RouteGeometry, error) {
	route, ok := p.byVehicle[normalizeVehicleID(vehicleID)]
	if !ok {
		return nil, fmt.Errorf("route for vehicle %q: %w", vehicleID, ports.ErrRouteNotFound)
	}

	out := *route
	out.Stops = append([]string(nil), route.Stops...)
	return &out, nil
}

func normalizeVehicleID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
