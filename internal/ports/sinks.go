package ports

import "saferoom-locator/internal/domain"

// SelectionSink receives shelters the user picked on the map.
type SelectionSink interface {
	ShelterSelected(s domain.Shelter)
}

// StatusSink receives failures the UI layer should show to the user.
type StatusSink interface {
	PositionFailed(err error)
}
