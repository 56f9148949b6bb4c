package shelters

import (
	"context"
	"saferoom-locator/internal/domain"
)

// StaticSource serves a fixed set of shelters. It ignores the reference
// position, like the backend does.
type StaticSource struct {
	shelters []domain.Shelter
}

func NewStaticSource(shelters []domain.Shelter) *StaticSource {
	return &StaticSource{shelters: append([]domain.Shelter(nil), shelters...)}
}

// LoadStaticSource builds a StaticSource from a rooms document on disk.
func LoadStaticSource(path string) (*StaticSource, error) {
	shelters, err := ReadRoomsFile(path)
	if err != nil {
		return nil, err
	}
	return &StaticSource{shelters: shelters}, nil
}

func (s *StaticSource) ListShelters(ctx context.Context, _ domain.Coordinate) ([]domain.Shelter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]domain.Shelter(nil), s.shelters...), nil
}
