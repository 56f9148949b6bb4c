package services

import (
	"math"
	"saferoom-locator/internal/domain"
	"sort"
)

const earthRadiusMeters = 6371008.8

// DistanceMeters is the great-circle distance between a and b.
func DistanceMeters(a, b domain.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

type RankedShelter struct {
	Shelter        domain.Shelter
	DistanceMeters float64
}

// RankShelters orders the located shelters by distance from self, nearest
// first. With availableOnly set, unavailable shelters are left out.
// Equal distances are ordered by id so the ranking is deterministic.
func RankShelters(self domain.Coordinate, shelters []domain.Shelter, availableOnly bool) []RankedShelter {
	out := make([]RankedShelter, 0, len(shelters))
	for _, s := range shelters {
		if !s.HasLocation() {
			continue
		}
		if availableOnly && !s.Available {
			continue
		}
		out = append(out, RankedShelter{Shelter: s, DistanceMeters: DistanceMeters(self, *s.Location)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceMeters != out[j].DistanceMeters {
			return out[i].DistanceMeters < out[j].DistanceMeters
		}
		return out[i].Shelter.ID < out[j].Shelter.ID
	})
	return out
}

// NearestAvailable returns the closest open shelter, if any.
func NearestAvailable(self domain.Coordinate, shelters []domain.Shelter) (RankedShelter, bool) {
	ranked := RankShelters(self, shelters, true)
	if len(ranked) == 0 {
		return RankedShelter{}, false
	}
	return ranked[0], true
}
