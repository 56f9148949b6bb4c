package handlers

import (
	"context"
	"errors"
	"net/http"
	"saferoom-locator/internal/adapters/mapview"
	"saferoom-locator/internal/adapters/ui"
	"saferoom-locator/internal/api/dto"
	"saferoom-locator/internal/domain"
	"saferoom-locator/internal/platform/obs"
	"saferoom-locator/internal/services"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Engine is the part of the sync orchestrator the API drives.
type Engine interface {
	Snapshot() services.SyncSnapshot
	Select(id string) (domain.Shelter, error)
	Recenter(ctx context.Context) error
	RestartTracking(ctx context.Context) error
}

type ViewReader interface {
	View() mapview.View
}

type RouteReader interface {
	Current() (string, *domain.Shelter)
	History() []string
}

type StatusReader interface {
	Report() ui.StatusReport
}

type MapHandler struct {
	Engine Engine
	View   ViewReader
	Routes RouteReader
	Status StatusReader
}

// Viewport reports the camera and the markers currently placed on the map.
func (h *MapHandler) Viewport(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	snap := h.Engine.Snapshot()
	view := h.View.View()

	res := dto.ViewportResponse{
		Container: view.Container,
		Ready:     view.Ready,
		Camera: dto.CameraResponse{
			Center: dto.NewCoordinate(view.Camera.Center),
			Zoom:   view.Camera.Zoom,
			Pans:   view.Pans,
		},
		Position: dto.NewCoordinate(snap.Position),
		Tracking: snap.Tracking,
		Markers:  make([]dto.MarkerResponse, 0, len(view.Markers)),
		Issued:   snap.Issued,
		Applied:  snap.Applied,
	}
	for _, m := range view.Markers {
		res.Markers = append(res.Markers, dto.MarkerResponse{
			Key:        m.Key,
			Category:   m.Category.String(),
			Label:      ui.Label(m.Category),
			Position:   dto.Coordinate{Lat: m.Position.Lat, Lng: m.Position.Lng},
			Icon:       dto.IconResponse{URL: m.Icon.URL, Width: m.Icon.Width, Height: m.Icon.Height},
			ShelterID:  m.ShelterID,
			Accessible: m.Accessible,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Shelters lists the last applied shelter snapshot, including records
// that have no location and therefore no marker.
func (h *MapHandler) Shelters(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	snap := h.Engine.Snapshot()
	res := dto.ListShelterResponse{Shelters: make([]dto.ShelterResponse, 0, len(snap.Shelters))}
	for _, s := range snap.Shelters {
		res.Shelters = append(res.Shelters, dto.NewShelter(s))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Nearest ranks the located shelters by distance from the tracked position.
// ?available=false includes occupied shelters; ?limit caps the list.
func (h *MapHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	limit := 5
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	availableOnly := q.Get("available") != "false"

	snap := h.Engine.Snapshot()
	if snap.Position == nil {
		writeError(w, r, http.StatusConflict, "position not known yet")
		return
	}

	ranked := services.RankShelters(*snap.Position, snap.Shelters, availableOnly)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	res := dto.ListNearbyResponse{
		Position: dto.NewCoordinate(snap.Position),
		Shelters: make([]dto.NearbyShelterResponse, 0, len(ranked)),
	}
	for _, rs := range ranked {
		res.Shelters = append(res.Shelters, dto.NearbyShelterResponse{
			Shelter:        dto.NewShelter(rs.Shelter),
			DistanceMeters: rs.DistanceMeters,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Select acts like a marker click on shelter {id}.
func (h *MapHandler) Select(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "shelter id is required")
		return
	}

	s, err := h.Engine.Select(id)
	if errors.Is(err, domain.ErrShelterNotFound) {
		writeError(w, r, http.StatusNotFound, "shelter not found")
		return
	}
	if err != nil {
		obs.LoggerFrom(r.Context()).Error("select shelter failed", zap.String("id", id), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	shelter := dto.NewShelter(s)
	writeJSON(w, r, http.StatusOK, dto.SelectionResponse{
		Route:   ui.DetailRoute(s.ID),
		Shelter: &shelter,
	})
}

// Recenter is the "my location" button.
func (h *MapHandler) Recenter(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	h.accept(w, r, h.Engine.Recenter)
}

func (h *MapHandler) RestartTracking(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	h.accept(w, r, h.Engine.RestartTracking)
}

func (h *MapHandler) accept(w http.ResponseWriter, r *http.Request, fn func(context.Context) error) {
	if err := fn(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "engine is not running")
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *MapHandler) Selection(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	route, s := h.Routes.Current()
	res := dto.SelectionResponse{Route: route, History: h.Routes.History()}
	if s != nil {
		shelter := dto.NewShelter(*s)
		res.Shelter = &shelter
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *MapHandler) StatusReport(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	snap := h.Engine.Snapshot()
	rep := h.Status.Report()
	res := dto.StatusResponse{
		Tracking: snap.Tracking,
		MapReady: snap.MapReady,
		Failures: rep.Failures,
		Code:     rep.Code,
		Message:  rep.Message,
	}
	if !rep.At.IsZero() {
		at := rep.At
		res.At = &at
	}

	writeJSON(w, r, http.StatusOK, res)
}
