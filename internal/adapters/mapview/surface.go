// Package mapview is an in-process MapSurface. It keeps the camera and the
// placed markers in memory so the local API can render them.
package mapview

import (
	"errors"
	"fmt"
	"saferoom-locator/internal/domain"
	"saferoom-locator/internal/ports"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

var errForeignHandle = errors.New("mapview: handle does not belong to this surface")

type viewport struct {
	container string
}

type markerHandle struct {
	id int
}

// Camera is the current viewport framing.
type Camera struct {
	Center *domain.Coordinate
	Zoom   int
}

// View is a point-in-time copy of the surface.
type View struct {
	Container string
	Ready     bool
	Camera    Camera
	Options   domain.ViewportOptions
	Markers   []domain.Marker
	Pans      int
}

type Surface struct {
	readyDelay time.Duration
	log        *zap.Logger

	mu      sync.Mutex
	vp      *viewport
	ready   bool
	opts    domain.ViewportOptions
	camera  Camera
	markers map[int]domain.Marker
	nextID  int
	pans    int
	timer   *time.Timer
}

// NewSurface returns a surface whose viewport becomes ready readyDelay after
// it is created. A zero delay reports readiness before CreateViewport returns.
func NewSurface(readyDelay time.Duration, log *zap.Logger) *Surface {
	if log == nil {
		log = zap.NewNop()
	}
	return &Surface{
		readyDelay: readyDelay,
		log:        log.Named("mapview"),
		markers:    map[int]domain.Marker{},
	}
}

func (s *Surface) CreateViewport(container string, opts domain.ViewportOptions, onReady func(ports.ViewportHandle)) error {
	if container == "" {
		return errors.New("mapview: container is empty")
	}
	if opts.Center != nil {
		if err := opts.Center.Validate(); err != nil {
			return fmt.Errorf("mapview: initial center: %w", err)
		}
	}

	s.mu.Lock()
	if s.vp != nil {
		s.mu.Unlock()
		return errors.New("mapview: viewport already created")
	}
	vp := &viewport{container: container}
	s.vp = vp
	s.opts = opts
	s.camera = Camera{Center: copyCoord(opts.Center), Zoom: opts.Zoom}

	fire := func() {
		s.mu.Lock()
		s.ready = true
		s.mu.Unlock()
		s.log.Debug("viewport ready", zap.String("container", container))
		onReady(vp)
	}

	if s.readyDelay <= 0 {
		s.mu.Unlock()
		fire()
		return nil
	}
	s.timer = time.AfterFunc(s.readyDelay, fire)
	s.mu.Unlock()
	return nil
}

func (s *Surface) PlaceMarker(h ports.ViewportHandle, m domain.Marker) (ports.MarkerHandle, error) {
	if err := m.Position.Validate(); err != nil {
		return nil, fmt.Errorf("mapview: place marker %q: %w", m.Key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.own(h); err != nil {
		return nil, err
	}

	s.nextID++
	s.markers[s.nextID] = m
	return markerHandle{id: s.nextID}, nil
}

func (s *Surface) RemoveMarker(h ports.MarkerHandle) error {
	mh, ok := h.(markerHandle)
	if !ok {
		return errForeignHandle
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markers[mh.id]; !ok {
		return fmt.Errorf("mapview: marker %d is not placed", mh.id)
	}
	delete(s.markers, mh.id)
	return nil
}

func (s *Surface) SetCenter(h ports.ViewportHandle, c domain.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.own(h) != nil {
		return
	}
	s.camera.Center = &c
}

func (s *Surface) SetZoom(h ports.ViewportHandle, zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.own(h) != nil {
		return
	}
	s.camera.Zoom = zoom
}

// PanTo moves the camera like SetCenter. Pans are counted separately so
// callers can tell an animated recenter from a follow update.
func (s *Surface) PanTo(h ports.ViewportHandle, c domain.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.own(h) != nil {
		return
	}
	s.camera.Center = &c
	s.pans++
}

// View returns a copy of the surface. Markers are in placement order.
func (s *Surface) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.markers))
	for id := range s.markers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	markers := make([]domain.Marker, 0, len(ids))
	for _, id := range ids {
		markers = append(markers, s.markers[id])
	}

	v := View{
		Ready:   s.ready,
		Camera:  Camera{Center: copyCoord(s.camera.Center), Zoom: s.camera.Zoom},
		Options: s.opts,
		Markers: markers,
		Pans:    s.pans,
	}
	if s.vp != nil {
		v.Container = s.vp.container
	}
	return v
}

// Close cancels a pending readiness notification.
func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *Surface) own(h ports.ViewportHandle) error {
	vp, ok := h.(*viewport)
	if !ok || vp == nil || vp != s.vp {
		return errForeignHandle
	}
	return nil
}

func copyCoord(c *domain.Coordinate) *domain.Coordinate {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}
