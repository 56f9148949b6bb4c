package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"saferoom-locator/internal/adapters/shelters"
	"strings"
)

// InitSchema creates the shelter registry tables. The statements run
// unchanged on SQLite and Postgres.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createSheltersQuery := `
	CREATE TABLE IF NOT EXISTS shelters (
		shelter_id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		street TEXT NOT NULL DEFAULT '',
		street_number INTEGER NOT NULL DEFAULT 0,
		floor INTEGER NOT NULL DEFAULT 0,
		apartment INTEGER NOT NULL DEFAULT 0,
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		description TEXT NOT NULL DEFAULT '',
		images TEXT NOT NULL DEFAULT '[]',
		capacity INTEGER NOT NULL DEFAULT 0,
		owner_id TEXT NOT NULL DEFAULT '',
		available BOOLEAN NOT NULL DEFAULT FALSE,
		accessible BOOLEAN NOT NULL DEFAULT FALSE,
		is_public BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_shelters_lat_lng
	ON shelters(lat, lng);
	`

	statements := []string{
		createSheltersQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedFromJSON loads a rooms document (the backend listing format) into the
// registry, replacing rows with the same id.
func SeedFromJSON(ctx context.Context, db *sql.DB, driver, jsonPath string) (int, error) {
	data, err := shelters.ReadRoomsFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed shelters: %w", err)
	}

	for i, s := range data {
		if strings.TrimSpace(s.ID) == "" {
			return 0, fmt.Errorf("seed shelters: item at index %d: _id cannot be empty", i+1)
		}
		if s.Location != nil {
			if err := s.Location.Validate(); err != nil {
				return 0, fmt.Errorf("seed shelters: item %q: %w", s.ID, err)
			}
		}
	}

	repo := NewSQLShelterRepository(db, driver)
	if err := repo.Upsert(ctx, data); err != nil {
		return 0, fmt.Errorf("seed shelters: %w", err)
	}

	return len(data), nil
}
