package dto

import "time"

type IconResponse struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type MarkerResponse struct {
	Key        string       `json:"key"`
	Category   string       `json:"category"`
	Label      string       `json:"label"`
	Position   Coordinate   `json:"position"`
	Icon       IconResponse `json:"icon"`
	ShelterID  string       `json:"shelter_id,omitempty"`
	Accessible bool         `json:"accessible,omitempty"`
}

type CameraResponse struct {
	Center *Coordinate `json:"center"`
	Zoom   int         `json:"zoom"`
	Pans   int         `json:"pans"`
}

// ViewportResponse is what the map currently shows: camera, placed
// markers and the tracked position behind them.
type ViewportResponse struct {
	Container string           `json:"container"`
	Ready     bool             `json:"ready"`
	Camera    CameraResponse   `json:"camera"`
	Position  *Coordinate      `json:"position"`
	Tracking  bool             `json:"tracking"`
	Markers   []MarkerResponse `json:"markers"`
	Issued    uint64           `json:"fetches_issued"`
	Applied   uint64           `json:"fetches_applied"`
}

type SelectionResponse struct {
	Route   string           `json:"route"`
	Shelter *ShelterResponse `json:"shelter,omitempty"`
	History []string         `json:"history,omitempty"`
}

type StatusResponse struct {
	Tracking bool       `json:"tracking"`
	MapReady bool       `json:"map_ready"`
	Failures int        `json:"position_failures"`
	Code     string     `json:"last_error_code,omitempty"`
	Message  string     `json:"last_error,omitempty"`
	At       *time.Time `json:"last_error_at,omitempty"`
}
