package ports

import "saferoom-locator/internal/domain"

// WatchID identifies one continuous observation registered with a PositionSource.
type WatchID int64

type WatchOptions struct {
	HighAccuracy bool
}

// Contract for continuous device position observation.
type PositionSource interface {
	// Register a watch. onReading fires for every new reading until the watch is
	// cleared; onFailure fires when the source cannot keep delivering positions.
	// An error is returned when the source cannot observe positions at all.
	Watch(opts WatchOptions, onReading func(domain.Reading), onFailure func(error)) (WatchID, error)
	// Release a watch. Clearing an unknown or already cleared watch is a no-op.
	ClearWatch(id WatchID)
}
