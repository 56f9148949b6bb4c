package mapview

import (
	"saferoom-locator/internal/domain"
	"saferoom-locator/internal/ports"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func openNow(t *testing.T, s *Surface) ports.ViewportHandle {
	t.Helper()
	var h ports.ViewportHandle
	opts := domain.DefaultViewportOptions()
	require.NoError(t, s.CreateViewport("map", opts, func(vh ports.ViewportHandle) { h = vh }))
	require.NotNil(t, h, "zero delay reports readiness synchronously")
	return h
}

func TestSurfaceImmediateReady(t *testing.T) {
	s := NewSurface(0, zaptest.NewLogger(t))
	openNow(t, s)

	v := s.View()
	assert.True(t, v.Ready)
	assert.Equal(t, "map", v.Container)
	assert.Equal(t, 15, v.Camera.Zoom)
	assert.Nil(t, v.Camera.Center)
	assert.True(t, v.Options.DisableDefaultUI)
}

func TestSurfaceDelayedReady(t *testing.T) {
	s := NewSurface(5*time.Millisecond, zaptest.NewLogger(t))
	defer s.Close()

	ready := make(chan ports.ViewportHandle, 1)
	require.NoError(t, s.CreateViewport("map", domain.DefaultViewportOptions(), func(h ports.ViewportHandle) { ready <- h }))
	assert.False(t, s.View().Ready)

	select {
	case h := <-ready:
		assert.NotNil(t, h)
	case <-time.After(time.Second):
		t.Fatal("viewport never became ready")
	}
	assert.True(t, s.View().Ready)
}

func TestSurfaceSingleViewport(t *testing.T) {
	s := NewSurface(0, nil)
	openNow(t, s)
	assert.Error(t, s.CreateViewport("other", domain.ViewportOptions{}, func(ports.ViewportHandle) {}))
	assert.Error(t, NewSurface(0, nil).CreateViewport("", domain.ViewportOptions{}, func(ports.ViewportHandle) {}))
}

func TestSurfaceCamera(t *testing.T) {
	s := NewSurface(0, nil)
	h := openNow(t, s)

	s.SetCenter(h, domain.Coordinate{Lat: 1, Lng: 2})
	s.SetZoom(h, 20)
	v := s.View()
	require.NotNil(t, v.Camera.Center)
	assert.Equal(t, domain.Coordinate{Lat: 1, Lng: 2}, *v.Camera.Center)
	assert.Equal(t, 20, v.Camera.Zoom)
	assert.Zero(t, v.Pans)

	s.PanTo(h, domain.Coordinate{Lat: 3, Lng: 4})
	v = s.View()
	assert.Equal(t, domain.Coordinate{Lat: 3, Lng: 4}, *v.Camera.Center)
	assert.Equal(t, 1, v.Pans)

	// Commands on a foreign handle are ignored.
	s.SetZoom(&viewport{container: "map"}, 3)
	assert.Equal(t, 20, s.View().Camera.Zoom)
}

func TestSurfaceMarkers(t *testing.T) {
	s := NewSurface(0, nil)
	h := openNow(t, s)

	a, err := s.PlaceMarker(h, domain.Marker{Key: "a", Position: domain.Coordinate{Lat: 1, Lng: 1}})
	require.NoError(t, err)
	_, err = s.PlaceMarker(h, domain.Marker{Key: "b", Position: domain.Coordinate{Lat: 2, Lng: 2}})
	require.NoError(t, err)

	v := s.View()
	require.Len(t, v.Markers, 2)
	assert.Equal(t, "a", v.Markers[0].Key)
	assert.Equal(t, "b", v.Markers[1].Key)

	require.NoError(t, s.RemoveMarker(a))
	assert.Error(t, s.RemoveMarker(a))
	assert.Len(t, s.View().Markers, 1)

	_, err = s.PlaceMarker(h, domain.Marker{Key: "bad", Position: domain.Coordinate{Lat: 100}})
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)

	_, err = s.PlaceMarker(nil, domain.Marker{Key: "c", Position: domain.Coordinate{}})
	assert.ErrorIs(t, err, errForeignHandle)
}
