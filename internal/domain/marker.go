package domain

// MarkerCategory is the visual class of a map marker.
type MarkerCategory int

const (
	CategorySelf MarkerCategory = iota
	CategoryUnavailable
	CategoryPublicAvailable
	CategoryPrivateAvailable
)

func (c MarkerCategory) String() string {
	switch c {
	case CategorySelf:
		return "self"
	case CategoryUnavailable:
		return "unavailable"
	case CategoryPublicAvailable:
		return "public_available"
	case CategoryPrivateAvailable:
		return "private_available"
	default:
		return "unknown"
	}
}

// Icon describes the image drawn for a marker, sized in pixels.
type Icon struct {
	URL    string
	Width  int
	Height int
}

// Marker is one renderable point on the map.
// ShelterID is empty for the self marker.
type Marker struct {
	Key        string
	Category   MarkerCategory
	Position   Coordinate
	Icon       Icon
	ShelterID  string
	Accessible bool
}

// Camera and chrome options used when the map viewport is created.
type ViewportOptions struct {
	Center            *Coordinate
	Zoom              int
	DisableDefaultUI  bool
	ZoomControl       bool
	FullscreenControl bool
	StreetViewControl bool
	MapTypeControl    bool
	ClickableIcons    bool
}

// DefaultViewportOptions hides every map control and disables clicks on
// points of interest other than shelters.
func DefaultViewportOptions() ViewportOptions {
	return ViewportOptions{
		Zoom:             15,
		DisableDefaultUI: true,
	}
}
