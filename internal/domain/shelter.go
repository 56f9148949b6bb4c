package domain

import "time"

// Street address of a shelter as registered by its owner.
type Address struct {
	City      string
	Street    string
	Number    int
	Floor     int
	Apartment int
}

// Shelter is a safe-room record owned by the backend.
// Location may be nil; such records are never rendered on the map.
// A fetched slice of shelters is treated as an immutable snapshot.
type Shelter struct {
	ID          string
	Title       string
	Address     Address
	Location    *Coordinate
	Description string
	Images      []string
	Capacity    int
	OwnerID     string
	Available   bool
	Accessible  bool
	IsPublic    bool
	CreatedAt   *time.Time
}

// HasLocation reports whether the shelter carries a usable map position.
func (s Shelter) HasLocation() bool {
	return s.Location != nil && s.Location.Validate() == nil
}
