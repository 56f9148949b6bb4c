// Package position provides PositionSource implementations that do not need
// a device: a replay of a recorded track.
package position

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"saferoom-locator/internal/domain"
	"saferoom-locator/internal/ports"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// TrackPoint is one recorded fix. AccuracyMeters is optional.
type TrackPoint struct {
	Lat            float64 `json:"lat" yaml:"lat"`
	Lng            float64 `json:"lng" yaml:"lng"`
	AccuracyMeters float64 `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`
}

type Track struct {
	Points []TrackPoint `json:"points" yaml:"points"`
}

// LoadTrack reads a track from a .json, .yaml or .yml file.
func LoadTrack(path string) (Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Track{}, fmt.Errorf("load track: read %q: %w", path, err)
	}

	var tr Track
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &tr)
	default:
		err = json.Unmarshal(data, &tr)
	}
	if err != nil {
		return Track{}, fmt.Errorf("load track: parse %q: %w", path, err)
	}

	for i, p := range tr.Points {
		c := domain.Coordinate{Lat: p.Lat, Lng: p.Lng}
		if err := c.Validate(); err != nil {
			return Track{}, fmt.Errorf("load track: point #%d: %w", i+1, err)
		}
	}
	return tr, nil
}

// ReplayOptions configures a ReplaySource. Deny makes every watch fail with a
// permission error instead of replaying, as a user refusing the location
// prompt would.
type ReplayOptions struct {
	Interval time.Duration
	Loop     bool
	Deny     bool
	Logger   *zap.Logger
}

// ReplaySource plays a track back to each watcher on its own goroutine.
// Readings are stamped Interval apart starting at the moment of Watch.
type ReplaySource struct {
	track    Track
	interval time.Duration
	loop     bool
	deny     bool
	log      *zap.Logger

	mu      sync.Mutex
	nextID  ports.WatchID
	watches map[ports.WatchID]chan struct{}
	wg      sync.WaitGroup
	closed  bool
}

func NewReplaySource(track Track, opts ReplayOptions) *ReplaySource {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &ReplaySource{
		track:    track,
		interval: interval,
		loop:     opts.Loop,
		deny:     opts.Deny,
		log:      log.Named("replay"),
		watches:  map[ports.WatchID]chan struct{}{},
	}
}

var errNoTrack = errors.New("replay source: track has no points")

func (r *ReplaySource) Watch(opts ports.WatchOptions, onReading func(domain.Reading), onFailure func(error)) (ports.WatchID, error) {
	if len(r.track.Points) == 0 && !r.deny {
		return 0, errNoTrack
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, errors.New("replay source: closed")
	}

	r.nextID++
	id := r.nextID
	stop := make(chan struct{})
	r.watches[id] = stop

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if r.deny {
			select {
			case <-stop:
			default:
				onFailure(&domain.PositionError{Code: domain.PermissionDenied, Message: "user denied geolocation"})
			}
			return
		}
		r.play(stop, opts, onReading)
	}()

	r.log.Debug("watch started", zap.Int64("watch_id", int64(id)), zap.Int("points", len(r.track.Points)))
	return id, nil
}

func (r *ReplaySource) play(stop <-chan struct{}, opts ports.WatchOptions, onReading func(domain.Reading)) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	start := time.Now()
	n := 0
	for {
		i := n % len(r.track.Points)
		if n >= len(r.track.Points) && !r.loop {
			return
		}

		p := r.track.Points[i]
		onReading(domain.Reading{
			Coordinate:     domain.Coordinate{Lat: p.Lat, Lng: p.Lng},
			AccuracyMeters: accuracy(p, opts),
			Timestamp:      start.Add(time.Duration(n) * r.interval),
		})
		n++

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func accuracy(p TrackPoint, opts ports.WatchOptions) float64 {
	switch {
	case p.AccuracyMeters > 0:
		return p.AccuracyMeters
	case opts.HighAccuracy:
		return 5
	default:
		return 50
	}
}

// ClearWatch stops delivery for id. It does not wait for the watch
// goroutine, so it may be called from inside a callback.
func (r *ReplaySource) ClearWatch(id ports.WatchID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stop, ok := r.watches[id]; ok {
		close(stop)
		delete(r.watches, id)
	}
}

// Close stops every watch and waits for their goroutines.
func (r *ReplaySource) Close() {
	r.mu.Lock()
	r.closed = true
	for id, stop := range r.watches {
		close(stop)
		delete(r.watches, id)
	}
	r.mu.Unlock()

	r.wg.Wait()
}
