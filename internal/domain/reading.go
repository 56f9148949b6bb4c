package domain

import "time"

// Reading is a single observation produced by a position source.
type Reading struct {
	Coordinate     Coordinate
	AccuracyMeters float64
	Timestamp      time.Time
}
