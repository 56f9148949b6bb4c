// Package config loads the locator configuration.
//
// Values come from an optional YAML file, then environment variables (a .env
// file is honoured), and are validated with struct tags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults returns the configuration used when nothing overrides it.
func Defaults() AppConfig {
	return AppConfig{
		Backend: BackendConfig{
			Source:      "http",
			BaseURL:     "http://localhost:3000/api",
			RoomsPath:   "/rooms",
			TimeoutMS:   10000,
			MaxAttempts: 4,
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			DSN:      "data/shelters.db",
			SeedPath: "data/seeds/shelters.json",
		},
		Tracking: TrackingConfig{
			HighAccuracy:     true,
			TrackPath:        "data/track.json",
			ReplayIntervalMS: 1000,
		},
		Map: MapConfig{
			Container:   "map",
			InitialZoom: 15,
			FollowZoom:  20,
		},
		API: APIConfig{Addr: ":8080"},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads path (missing file is fine when path is empty or the default),
// applies environment overrides and validates the result.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load config: read .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return AppConfig{}, fmt.Errorf("load config: parse %q: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
		default:
			return AppConfig{}, fmt.Errorf("load config: read %q: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("load config: validate: %w", err)
	}
	if cfg.Backend.Source == "http" && strings.TrimSpace(cfg.Backend.BaseURL) == "" {
		return AppConfig{}, errors.New("load config: backend.baseURL is required for the http source")
	}
	if cfg.Backend.Source == "sql" && strings.TrimSpace(cfg.Database.DSN) == "" {
		return AppConfig{}, errors.New("load config: database.dsn is required for the sql source")
	}
	if cfg.Backend.Source == "static" && strings.TrimSpace(cfg.Database.SeedPath) == "" {
		return AppConfig{}, errors.New("load config: database.seedPath is required for the static source")
	}
	return cfg, nil
}

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "config.yml"

func (c *AppConfig) applyEnvOverrides() {
	c.Backend.Source = Get("SHELTER_SOURCE", c.Backend.Source)
	c.Backend.BaseURL = Get("BACKEND_URL", c.Backend.BaseURL)
	c.Database.Driver = Get("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = Get("DATABASE_URL", c.Database.DSN)
	c.Database.SeedPath = Get("SEED_PATH", c.Database.SeedPath)
	c.Tracking.TrackPath = Get("TRACK_PATH", c.Tracking.TrackPath)
	c.Log.Level = strings.ToLower(Get("LOG_LEVEL", c.Log.Level))

	if port := Get("PORT", ""); port != "" {
		c.API.Addr = ":" + port
	}
	if v := Get("FOLLOW_ZOOM", ""); v != "" {
		if z, err := strconv.Atoi(v); err == nil {
			c.Map.FollowZoom = z
		}
	}
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
