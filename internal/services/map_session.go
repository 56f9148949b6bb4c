package services

import (
	"fmt"
	"saferoom-locator/internal/domain"
	"saferoom-locator/internal/ports"
	"sync"

	"go.uber.org/zap"
)

// SessionState is the readiness of a MapSession.
type SessionState int

const (
	SessionUninitialized SessionState = iota
	SessionReady
)

func (s SessionState) String() string {
	if s == SessionReady {
		return "ready"
	}
	return "uninitialized"
}

// MapSession owns the viewport handle of one map instance.
//
// The session moves from uninitialized to ready exactly once. Camera and
// marker commands issued before that are dropped: the next position update
// carries a fresh center anyway. A new session is needed to re-initialize.
type MapSession struct {
	surface ports.MapSurface
	log     *zap.Logger

	mu      sync.Mutex
	state   SessionState
	handle  ports.ViewportHandle
	markers []ports.MarkerHandle
	ready   chan struct{}
}

func NewMapSession(surface ports.MapSurface, log *zap.Logger) *MapSession {
	if log == nil {
		log = zap.NewNop()
	}
	return &MapSession{
		surface: surface,
		log:     log.Named("map"),
		ready:   make(chan struct{}),
	}
}

// Open asks the surface to build the viewport. OnReady is wired as the
// surface's readiness callback.
func (m *MapSession) Open(container string, opts domain.ViewportOptions) error {
	if err := m.surface.CreateViewport(container, opts, m.OnReady); err != nil {
		return fmt.Errorf("open map session: create viewport %q: %w", container, err)
	}
	return nil
}

// OnReady records the live viewport handle. Only the first call counts.
func (m *MapSession) OnReady(h ports.ViewportHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == SessionReady {
		m.log.Warn("ignoring repeated map ready signal")
		return
	}
	m.handle = h
	m.state = SessionReady
	close(m.ready)
	m.log.Info("map ready")
}

func (m *MapSession) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ready is closed once the session becomes ready.
func (m *MapSession) Ready() <-chan struct{} { return m.ready }

// CenterOn jumps the camera to c at the given zoom level.
func (m *MapSession) CenterOn(c domain.Coordinate, zoom int) {
	h, ok := m.readyHandle("center")
	if !ok {
		return
	}
	m.surface.SetCenter(h, c)
	m.surface.SetZoom(h, zoom)
}

// PanTo animates the camera towards c keeping the zoom level.
func (m *MapSession) PanTo(c domain.Coordinate) {
	h, ok := m.readyHandle("pan")
	if !ok {
		return
	}
	m.surface.PanTo(h, c)
}

func (m *MapSession) SetZoom(zoom int) {
	h, ok := m.readyHandle("zoom")
	if !ok {
		return
	}
	m.surface.SetZoom(h, zoom)
}

// RenderMarkers replaces every marker on the viewport with markers.
func (m *MapSession) RenderMarkers(markers []domain.Marker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != SessionReady {
		m.log.Debug("dropping marker render", zap.Error(domain.ErrMapNotReady), zap.Int("markers", len(markers)))
		return
	}

	for _, mh := range m.markers {
		if err := m.surface.RemoveMarker(mh); err != nil {
			m.log.Warn("remove marker failed", zap.Error(err))
		}
	}
	m.markers = m.markers[:0]

	for _, mk := range markers {
		mh, err := m.surface.PlaceMarker(m.handle, mk)
		if err != nil {
			m.log.Warn("place marker failed", zap.String("key", mk.Key), zap.Error(err))
			continue
		}
		m.markers = append(m.markers, mh)
	}
}

func (m *MapSession) readyHandle(cmd string) (ports.ViewportHandle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != SessionReady {
		m.log.Debug("dropping camera command", zap.String("cmd", cmd), zap.Error(domain.ErrMapNotReady))
		return nil, false
	}
	return m.handle, true
}
