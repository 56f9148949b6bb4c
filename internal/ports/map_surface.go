package ports

import "saferoom-locator/internal/domain"

// ViewportHandle is an opaque reference to a live map instance.
type ViewportHandle interface{}

// MarkerHandle is an opaque reference to a marker placed on a viewport.
type MarkerHandle interface{}

// Capability surface of the map rendering framework.
type MapSurface interface {
	// Instantiate a map inside container. onReady is invoked once the map is
	// interactive; it may run on another goroutine.
	CreateViewport(container string, opts domain.ViewportOptions, onReady func(ViewportHandle)) error
	PlaceMarker(h ViewportHandle, m domain.Marker) (MarkerHandle, error)
	RemoveMarker(m MarkerHandle) error
	SetCenter(h ViewportHandle, c domain.Coordinate)
	SetZoom(h ViewportHandle, zoom int)
	PanTo(h ViewportHandle, c domain.Coordinate)
}
