package position

import (
	"errors"
	"os"
	"path/filepath"
	"saferoom-locator/internal/domain"
	"saferoom-locator/internal/ports"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type collector struct {
	mu       sync.Mutex
	readings []domain.Reading
	errs     []error
}

func (c *collector) reading(r domain.Reading) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readings = append(c.readings, r)
}

func (c *collector) failure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func (c *collector) snapshot() ([]domain.Reading, []error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Reading(nil), c.readings...), append([]error(nil), c.errs...)
}

func TestLoadTrackFormats(t *testing.T) {
	js, err := LoadTrack("testdata/track.json")
	require.NoError(t, err)
	require.Len(t, js.Points, 3)
	assert.Equal(t, 8.0, js.Points[0].AccuracyMeters)

	ym, err := LoadTrack("testdata/track.yaml")
	require.NoError(t, err)
	require.Len(t, ym.Points, 2)
	assert.Equal(t, TrackPoint{Lat: 31.7690, Lng: 35.2142, AccuracyMeters: 12}, ym.Points[1])
}

func TestLoadTrackRejectsInvalidPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"points":[{"lat":91,"lng":0}]}`), 0o600))

	_, err := LoadTrack(path)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)
}

func TestReplayPlaysTrackOnceInOrder(t *testing.T) {
	tr, err := LoadTrack("testdata/track.json")
	require.NoError(t, err)

	src := NewReplaySource(tr, ReplayOptions{Interval: time.Millisecond})
	defer src.Close()

	var c collector
	_, err = src.Watch(ports.WatchOptions{HighAccuracy: true}, c.reading, c.failure)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		r, _ := c.snapshot()
		return len(r) == 3
	}, time.Second, 2*time.Millisecond)

	time.Sleep(10 * time.Millisecond)
	readings, errs := c.snapshot()
	require.Len(t, readings, 3, "replay without loop stops at the end of the track")
	assert.Empty(t, errs)

	assert.Equal(t, domain.Coordinate{Lat: 32.8150, Lng: 34.9890}, readings[0].Coordinate)
	assert.Equal(t, 8.0, readings[0].AccuracyMeters)
	assert.Equal(t, 5.0, readings[1].AccuracyMeters)
	for i := 1; i < len(readings); i++ {
		assert.True(t, readings[i].Timestamp.After(readings[i-1].Timestamp))
	}
}

func TestReplayLoops(t *testing.T) {
	src := NewReplaySource(Track{Points: []TrackPoint{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}}, ReplayOptions{
		Interval: time.Millisecond,
		Loop:     true,
	})
	defer src.Close()

	var c collector
	id, err := src.Watch(ports.WatchOptions{}, c.reading, c.failure)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		r, _ := c.snapshot()
		return len(r) >= 5
	}, time.Second, 2*time.Millisecond)
	src.ClearWatch(id)

	readings, _ := c.snapshot()
	assert.Equal(t, readings[0].Coordinate, readings[2].Coordinate)
	assert.Equal(t, 50.0, readings[0].AccuracyMeters)
}

func TestReplayClearWatchStopsDelivery(t *testing.T) {
	src := NewReplaySource(Track{Points: []TrackPoint{{Lat: 1, Lng: 1}}}, ReplayOptions{
		Interval: time.Millisecond,
		Loop:     true,
	})
	defer src.Close()

	var c collector
	id, err := src.Watch(ports.WatchOptions{}, c.reading, c.failure)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		r, _ := c.snapshot()
		return len(r) > 0
	}, time.Second, time.Millisecond)

	src.ClearWatch(id)
	src.ClearWatch(id)
	time.Sleep(5 * time.Millisecond)
	before, _ := c.snapshot()
	time.Sleep(10 * time.Millisecond)
	after, _ := c.snapshot()
	assert.Len(t, after, len(before))
}

func TestReplayDenied(t *testing.T) {
	src := NewReplaySource(Track{}, ReplayOptions{Deny: true})
	defer src.Close()

	var c collector
	_, err := src.Watch(ports.WatchOptions{}, c.reading, c.failure)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, errs := c.snapshot()
		return len(errs) == 1
	}, time.Second, time.Millisecond)

	_, errs := c.snapshot()
	var pe *domain.PositionError
	require.True(t, errors.As(errs[0], &pe))
	assert.Equal(t, domain.PermissionDenied, pe.Code)
	assert.ErrorIs(t, errs[0], domain.ErrPositionUnavailable)
}

func TestReplayEmptyTrackIsUnsupported(t *testing.T) {
	src := NewReplaySource(Track{}, ReplayOptions{})
	defer src.Close()

	_, err := src.Watch(ports.WatchOptions{}, func(domain.Reading) {}, func(error) {})
	assert.Error(t, err)
}

func TestReplayRejectsWatchAfterClose(t *testing.T) {
	src := NewReplaySource(Track{Points: []TrackPoint{{Lat: 1, Lng: 1}}}, ReplayOptions{})
	src.Close()

	_, err := src.Watch(ports.WatchOptions{}, func(domain.Reading) {}, func(error) {})
	assert.Error(t, err)
}
