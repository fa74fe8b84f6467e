package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"bus-tracker/internal/adapters/cache"
	"bus-tracker/internal/config"
	"bus-tracker/internal/platform/db"

	"github.com/joho/godotenv"
)

// dbtool prepares a postgres database for CACHE_DRIVER=postgres: it creates
// the cache tables and optionally seeds last-known-good positions.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/positions.json")
	if err := initAndSeed(context.Background(), conn, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := cache.InitPostgresSchema(conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")

	if _, err := os.Stat(seedPath); err != nil {
		log.Printf("No seed file at %s, skipping seed", seedPath)
		return nil
	}

	log.Println("Seeding position cache...")
	n, err := cache.SeedFromJSON(ctx, cache.NewSQLPositionCache(conn), seedPath)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Printf("Seeding complete. entries=%d", n)

	return nil
}
