package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"saferoom-locator/internal/adapters/repositories"
	"saferoom-locator/internal/config"
	"saferoom-locator/internal/platform/db"
	"saferoom-locator/internal/platform/logging"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// dbtool creates the shelter registry schema and loads the seed file.
func main() {
	log, err := logging.New(config.Get("LOG_LEVEL", "info"), "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found (using environment variables)")
	}

	driver := config.Get("DB_DRIVER", db.DriverPostgres)
	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(driver, databaseURL)
	if err != nil {
		log.Fatal("open registry", zap.Error(err))
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/shelters.json")
	if err := initAndSeed(context.Background(), log, conn, driver, seedPath); err != nil {
		log.Fatal("init and seed", zap.Error(err))
	}
}

func initAndSeed(ctx context.Context, log *zap.Logger, conn *sql.DB, driver, seedPath string) error {
	log.Info("initializing database schema", zap.String("driver", driver))
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Info("schema ready")

	log.Info("seeding database", zap.String("seed", seedPath))
	n, err := repositories.SeedFromJSON(ctx, conn, driver, seedPath)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info("seeding complete", zap.Int("shelters", n))

	return nil
}
