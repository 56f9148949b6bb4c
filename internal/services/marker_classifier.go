package services

import (
	"fmt"
	"saferoom-locator/internal/domain"
)

// SelfMarkerKey is the key of the marker drawn at the tracked position.
const SelfMarkerKey = "self"

const pinSize = 25

var pinIcons = map[domain.MarkerCategory]domain.Icon{
	domain.CategorySelf:             {URL: "http://maps.google.com/mapfiles/ms/icons/blue-dot.png", Width: pinSize, Height: pinSize},
	domain.CategoryUnavailable:      {URL: "http://maps.google.com/mapfiles/ms/icons/red-dot.png", Width: pinSize, Height: pinSize},
	domain.CategoryPublicAvailable:  {URL: "http://maps.google.com/mapfiles/ms/icons/orange-dot.png", Width: pinSize, Height: pinSize},
	domain.CategoryPrivateAvailable: {URL: "http://maps.google.com/mapfiles/ms/icons/green-dot.png", Width: pinSize, Height: pinSize},
}

// Classify maps a shelter to its marker category. Availability wins over
// visibility: an unavailable shelter is drawn as unavailable whether or not
// it is public.
func Classify(s domain.Shelter) domain.MarkerCategory {
	if !s.Available {
		return domain.CategoryUnavailable
	}
	if s.IsPublic {
		return domain.CategoryPublicAvailable
	}
	return domain.CategoryPrivateAvailable
}

// IconFor returns the pin drawn for a category.
func IconFor(c domain.MarkerCategory) domain.Icon {
	return pinIcons[c]
}

// BuildMarkers derives the full marker list for one render: the self marker
// (when a position is known) followed by one marker per located shelter.
// Shelters without a usable location are skipped before classification.
func BuildMarkers(self *domain.Coordinate, shelters []domain.Shelter) []domain.Marker {
	out := make([]domain.Marker, 0, len(shelters)+1)

	if self != nil {
		out = append(out, domain.Marker{
			Key:      SelfMarkerKey,
			Category: domain.CategorySelf,
			Position: *self,
			Icon:     IconFor(domain.CategorySelf),
		})
	}

	for i, s := range shelters {
		if !s.HasLocation() {
			continue
		}

		category := Classify(s)
		out = append(out, domain.Marker{
			// Index keeps keys unique when the backend repeats or omits ids.
			Key:        fmt.Sprintf("%s#%d", s.ID, i),
			Category:   category,
			Position:   *s.Location,
			Icon:       IconFor(category),
			ShelterID:  s.ID,
			Accessible: s.Accessible,
		})
	}

	return out
}
