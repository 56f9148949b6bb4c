package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"saferoom-locator/internal/domain"
	"saferoom-locator/internal/platform/obs"
	"time"
)

// SQLShelterRepository is a ShelterSource over the shelters table. Driver
// is the database/sql driver name (pgx or sqlite) and selects placeholders.
type SQLShelterRepository struct {
	DB     *sql.DB
	Driver string
}

func NewSQLShelterRepository(db *sql.DB, driver string) *SQLShelterRepository {
	return &SQLShelterRepository{DB: db, Driver: driver}
}

// ListShelters returns every registered shelter. The reference position is
// not used for filtering; locationless rows are returned with a nil Location.
func (s *SQLShelterRepository) ListShelters(ctx context.Context, _ domain.Coordinate) (_ []domain.Shelter, err error) {
	defer obs.Time(ctx, "registry.ListShelters")(&err)

	if s.DB == nil {
		return nil, errors.New("sql shelter repository: DB is nil")
	}

	query := `
	SELECT
		shelter_id, title,
		city, street, street_number, floor, apartment,
		lat, lng,
		description, images, capacity, owner_id,
		available, accessible, is_public,
		created_at
	FROM shelters
	ORDER BY shelter_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list shelters: query shelters table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Shelter, 0, 64)
	for rows.Next() {
		var (
			sh        domain.Shelter
			lat, lng  sql.NullFloat64
			images    string
			createdAt sql.NullString
		)
		err := rows.Scan(
			&sh.ID, &sh.Title,
			&sh.Address.City, &sh.Address.Street, &sh.Address.Number, &sh.Address.Floor, &sh.Address.Apartment,
			&lat, &lng,
			&sh.Description, &images, &sh.Capacity, &sh.OwnerID,
			&sh.Available, &sh.Accessible, &sh.IsPublic,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("list shelters: scan row: %w", err)
		}

		if lat.Valid && lng.Valid {
			sh.Location = &domain.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
		}
		if images != "" {
			if err := json.Unmarshal([]byte(images), &sh.Images); err != nil {
				return nil, fmt.Errorf("list shelters: decode images of %q: %w", sh.ID, err)
			}
		}
		if createdAt.Valid {
			if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
				sh.CreatedAt = &t
			}
		}

		out = append(out, sh)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shelters: row iteration: %w", err)
	}

	return out, nil
}

// Upsert inserts or replaces the given shelters in one transaction.
func (s *SQLShelterRepository) Upsert(ctx context.Context, shelters []domain.Shelter) (err error) {
	defer obs.Time(ctx, "registry.Upsert")(&err)

	if s.DB == nil {
		return errors.New("sql shelter repository: DB is nil")
	}
	if len(shelters) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert shelters: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, rebind(s.Driver, `
	INSERT INTO shelters (
		shelter_id, title,
		city, street, street_number, floor, apartment,
		lat, lng,
		description, images, capacity, owner_id,
		available, accessible, is_public,
		created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	ON CONFLICT (shelter_id) DO UPDATE
	SET title = EXCLUDED.title,
		city = EXCLUDED.city,
		street = EXCLUDED.street,
		street_number = EXCLUDED.street_number,
		floor = EXCLUDED.floor,
		apartment = EXCLUDED.apartment,
		lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		description = EXCLUDED.description,
		images = EXCLUDED.images,
		capacity = EXCLUDED.capacity,
		owner_id = EXCLUDED.owner_id,
		available = EXCLUDED.available,
		accessible = EXCLUDED.accessible,
		is_public = EXCLUDED.is_public,
		created_at = EXCLUDED.created_at;
	`))
	if err != nil {
		return fmt.Errorf("upsert shelters: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, sh := range shelters {
		var lat, lng sql.NullFloat64
		if sh.Location != nil {
			lat = sql.NullFloat64{Float64: sh.Location.Lat, Valid: true}
			lng = sql.NullFloat64{Float64: sh.Location.Lng, Valid: true}
		}

		images := sh.Images
		if images == nil {
			images = []string{}
		}
		imagesJSON, err := json.Marshal(images)
		if err != nil {
			return fmt.Errorf("upsert shelters: encode images of %q: %w", sh.ID, err)
		}

		var createdAt sql.NullString
		if sh.CreatedAt != nil {
			createdAt = sql.NullString{String: sh.CreatedAt.UTC().Format(time.RFC3339), Valid: true}
		}

		_, err = stmt.ExecContext(ctx,
			sh.ID, sh.Title,
			sh.Address.City, sh.Address.Street, sh.Address.Number, sh.Address.Floor, sh.Address.Apartment,
			lat, lng,
			sh.Description, string(imagesJSON), sh.Capacity, sh.OwnerID,
			sh.Available, sh.Accessible, sh.IsPublic,
			createdAt,
		)
		if err != nil {
			return fmt.Errorf("upsert shelters: insert shelter_id=%q: %w", sh.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert shelters: commit tx: %w", err)
	}

	return nil
}
