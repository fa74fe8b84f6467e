package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"bus-tracker/internal/adapters/cache"
	"bus-tracker/internal/adapters/eta"
	"bus-tracker/internal/adapters/feed"
	"bus-tracker/internal/adapters/geocode"
	"bus-tracker/internal/adapters/lookup"
	"bus-tracker/internal/adapters/routes"
	"bus-tracker/internal/api"
	"bus-tracker/internal/config"
	"bus-tracker/internal/platform/db"
	"bus-tracker/internal/platform/netstate"
	"bus-tracker/internal/ports"
	"bus-tracker/internal/services"
	"bus-tracker/internal/tracking"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// upstreamTimeout bounds every call to the lookup, geocoder and ETA services.
const upstreamTimeout = 10 * time.Second

// main is the application composition root.
// It wires concrete adapters behind ports, runs the tracking loop and serves the API.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	positionFeed, err := feed.NewWebSocketFeed(cfg.FeedBaseURL, cfg.FeedAuthToken, upstreamTimeout)
	if err != nil {
		return err
	}

	vehicleLookup, err := newLookup(cfg)
	if err != nil {
		return err
	}

	geocoder, err := geocode.NewNominatimGeocoder(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, stores.reverse)
	if err != nil {
		return err
	}

	etaProvider, err := eta.NewHTTPEtaProvider(cfg.EtaBaseURL, upstreamTimeout)
	if err != nil {
		return err
	}

	routeProvider, err := routes.LoadYAMLRouteProvider(cfg.RoutesPath)
	if err != nil {
		return err
	}

	monitor := netstate.NewMonitor(cfg.ConnectivityProbeURL, cfg.ConnectivityInterval)
	go monitor.Run(ctx)

	vm, err := tracking.New(tracking.Deps{
		Feed:     positionFeed,
		Poller:   services.NewFallbackPoller(vehicleLookup, stores.positions, monitor, cfg.PollInterval),
		Address:  services.NewAddressResolver(geocoder, cfg.AddressDebounce),
		Eta:      services.NewEtaEstimator(etaProvider),
		Net:      monitor,
		LiveWait: cfg.LiveWait,
	})
	if err != nil {
		return err
	}

	vmDone := make(chan error, 1)
	go func() { vmDone <- vm.Run(ctx) }()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(vm, routeProvider),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Printf("Server listening addr=:%s cache=%s lookup=%s", cfg.Port, cfg.CacheDriver, cfg.LookupKind)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	return <-vmDone
}

func newLookup(cfg *config.Config) (ports.VehicleLookup, error) {
	if cfg.LookupKind == "gtfsrt" {
		return lookup.NewGTFSRTLookup(cfg.GTFSRTVehiclePositionsURL, upstreamTimeout)
	}
	return lookup.NewHTTPLookup(cfg.LookupBaseURL, upstreamTimeout)
}

type stores struct {
	positions ports.PositionCache
	reverse   geocode.ReverseCache
	closers   []func() error
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Printf("close store: %v", err)
		}
	}
}

// openStores selects the last-known-good cache backend. Reverse geocode
// answers live in postgres for the postgres driver and in SQLite otherwise.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	s := &stores{}

	switch cfg.CacheDriver {
	case "postgres":
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, conn.Close)
		if err := cache.InitPostgresSchema(conn); err != nil {
			s.Close()
			return nil, err
		}
		s.positions = cache.NewSQLPositionCache(conn)
		s.reverse = cache.NewSQLReverseGeocodeCache(conn)

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		s.closers = append(s.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			s.Close()
			return nil, fmt.Errorf("open redis %s: %w", cfg.RedisAddr, err)
		}
		s.positions = cache.NewRedisPositionCache(client, cfg.CacheTTL)

		conn, err := openSqlite(cfg.DBPath)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, conn.Close)
		s.reverse = cache.NewSqliteReverseGeocodeCache(conn)

	default:
		conn, err := openSqlite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, conn.Close)
		s.positions = cache.NewSqlitePositionCache(conn)
		s.reverse = cache.NewSqliteReverseGeocodeCache(conn)
	}

	// Seed demo positions for local runs.
	if cfg.SeedPath != "" {
		n, err := cache.SeedFromJSON(ctx, s.positions, cfg.SeedPath)
		if err != nil {
			s.Close()
			return nil, err
		}
		log.Printf("seeded position cache entries=%d path=%s", n, cfg.SeedPath)
	}

	return s, nil
}

func openSqlite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir %q: %w", dir, err)
		}
	}

	conn, err := db.OpenSqlite(path)
	if err != nil {
		return nil, err
	}
	if err := cache.InitSqliteSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
