package dto

import (
	"saferoom-locator/internal/domain"
	"time"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Address struct {
	City      string `json:"city"`
	Street    string `json:"street"`
	Number    int    `json:"number"`
	Floor     int    `json:"floor"`
	Apartment int    `json:"apartment"`
}

type ShelterResponse struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Address     Address     `json:"address"`
	Location    *Coordinate `json:"location"`
	Description string      `json:"description,omitempty"`
	Images      []string    `json:"images,omitempty"`
	Capacity    int         `json:"capacity"`
	OwnerID     string      `json:"owner_id,omitempty"`
	Available   bool        `json:"available"`
	Accessible  bool        `json:"accessible"`
	IsPublic    bool        `json:"is_public"`
	CreatedAt   *time.Time  `json:"created_at,omitempty"`
}

type ListShelterResponse struct {
	Shelters []ShelterResponse `json:"shelters"`
}

func NewCoordinate(c *domain.Coordinate) *Coordinate {
	if c == nil {
		return nil
	}
	return &Coordinate{Lat: c.Lat, Lng: c.Lng}
}

func NewShelter(s domain.Shelter) ShelterResponse {
	return ShelterResponse{
		ID:    s.ID,
		Title: s.Title,
		Address: Address{
			City:      s.Address.City,
			Street:    s.Address.Street,
			Number:    s.Address.Number,
			Floor:     s.Address.Floor,
			Apartment: s.Address.Apartment,
		},
		Location:    NewCoordinate(s.Location),
		Description: s.Description,
		Images:      s.Images,
		Capacity:    s.Capacity,
		OwnerID:     s.OwnerID,
		Available:   s.Available,
		Accessible:  s.Accessible,
		IsPublic:    s.IsPublic,
		CreatedAt:   s.CreatedAt,
	}
}

type NearbyShelterResponse struct {
	Shelter        ShelterResponse `json:"shelter"`
	DistanceMeters float64         `json:"distance_meters"`
}

type ListNearbyResponse struct {
	Position *Coordinate            `json:"position"`
	Shelters []NearbyShelterResponse `json:"shelters"`
}
