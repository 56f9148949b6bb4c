package shelters

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"saferoom-locator/internal/domain"
	"time"
)

// Wire shapes of the backend room listing. Seed files use the same layout.
type roomList struct {
	Rooms []roomRecord `json:"rooms"`
}

type roomRecord struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Address     addressRecord   `json:"address"`
	Location    *locationRecord `json:"location"`
	Description string          `json:"description"`
	Images      []string        `json:"image"`
	Capacity    int             `json:"capacity"`
	OwnerID     string          `json:"ownerId"`
	Available   bool            `json:"available"`
	Accessible  bool            `json:"accessible"`
	IsPublic    bool            `json:"isPublic"`
	CreatedAt   string          `json:"createdAt"`
}

type addressRecord struct {
	City      string `json:"city"`
	Street    string `json:"street"`
	Number    int    `json:"number"`
	Floor     int    `json:"floor"`
	Apartment int    `json:"appartment"`
}

// Both fields are pointers so a half-filled location decodes as absent.
type locationRecord struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// DecodeRooms reads a `{"rooms": [...]}` document into shelters.
func DecodeRooms(r io.Reader) ([]domain.Shelter, error) {
	var doc roomList
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}

	out := make([]domain.Shelter, 0, len(doc.Rooms))
	for _, rec := range doc.Rooms {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

// ReadRoomsFile decodes a rooms document stored on disk.
func ReadRoomsFile(path string) ([]domain.Shelter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rooms file: %w", err)
	}
	defer f.Close()

	shelters, err := DecodeRooms(f)
	if err != nil {
		return nil, fmt.Errorf("read rooms file %q: %w", path, err)
	}
	return shelters, nil
}

func (r roomRecord) toDomain() domain.Shelter {
	s := domain.Shelter{
		ID:    r.ID,
		Title: r.Title,
		Address: domain.Address{
			City:      r.Address.City,
			Street:    r.Address.Street,
			Number:    r.Address.Number,
			Floor:     r.Address.Floor,
			Apartment: r.Address.Apartment,
		},
		Description: r.Description,
		Images:      r.Images,
		Capacity:    r.Capacity,
		OwnerID:     r.OwnerID,
		Available:   r.Available,
		Accessible:  r.Accessible,
		IsPublic:    r.IsPublic,
	}

	if r.Location != nil && r.Location.Lat != nil && r.Location.Lng != nil {
		s.Location = &domain.Coordinate{Lat: *r.Location.Lat, Lng: *r.Location.Lng}
	}

	if r.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
			s.CreatedAt = &t
		}
	}

	return s
}
