package ports

import (
	"context"
	"saferoom-locator/internal/domain"
)

// Port: a boundary for retrieving shelter records from the backend.
type ShelterSource interface {
	// Return the shelters known to the backend. near is advisory; sources may
	// ignore it and return the full set.
	ListShelters(ctx context.Context, near domain.Coordinate) ([]domain.Shelter, error)
}
