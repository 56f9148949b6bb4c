package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinate (latitude, longitude) in decimal degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Validate reports ErrInvalidCoordinate unless both components are finite
// and within [-90,90] / [-180,180].
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return fmt.Errorf("%w: non-finite component (lat=%v lng=%v)", ErrInvalidCoordinate, c.Lat, c.Lng)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidCoordinate, c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidCoordinate, c.Lng)
	}
	return nil
}

func (c Coordinate) String() string { return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng) }
