package services

import (
	"errors"
	"fmt"
	"saferoom-locator/internal/domain"
	"saferoom-locator/internal/ports"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LocationTracker turns a PositionSource watch into a cancellable subscription.
//
// Every subscription it hands out is released by Stop or, at the latest, by
// Close when the owner tears the tracker down.
type LocationTracker struct {
	source ports.PositionSource
	opts   ports.WatchOptions
	log    *zap.Logger

	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// Subscription is one live position watch.
type Subscription struct {
	tracker *LocationTracker
	id      ports.WatchID

	onUpdate func(domain.Coordinate)
	onError  func(error)

	mu         sync.Mutex
	registered bool
	done       bool
	released   bool
	last       time.Time
}

// NewLocationTracker requests high-accuracy observation when highAccuracy is set.
func NewLocationTracker(source ports.PositionSource, highAccuracy bool, log *zap.Logger) *LocationTracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &LocationTracker{
		source: source,
		opts:   ports.WatchOptions{HighAccuracy: highAccuracy},
		log:    log.Named("tracker"),
		subs:   make(map[*Subscription]struct{}),
	}
}

// Start registers a continuous watch. onUpdate receives every new reading in
// sensor order; onError is called at most once, after which the subscription
// is finished and must be restarted by the caller.
func (t *LocationTracker) Start(onUpdate func(domain.Coordinate), onError func(error)) (*Subscription, error) {
	if onUpdate == nil {
		return nil, errors.New("start tracker: onUpdate callback is required")
	}
	if onError == nil {
		onError = func(error) {}
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, errors.New("start tracker: tracker is closed")
	}
	t.mu.Unlock()

	sub := &Subscription{tracker: t, onUpdate: onUpdate, onError: onError}

	id, err := t.source.Watch(t.opts, sub.handleReading, sub.handleFailure)
	if err != nil {
		sub.mu.Lock()
		sub.done = true
		sub.mu.Unlock()
		return nil, fmt.Errorf("start tracker: %w: %v", domain.ErrPositionUnavailable, err)
	}

	// A source may fail (or the tracker close) before Watch returns; the
	// watch is then released here since release could not know the id yet.
	sub.mu.Lock()
	sub.id = id
	sub.registered = true
	finished := sub.done
	if finished {
		sub.released = true
	}
	sub.mu.Unlock()

	if finished {
		t.source.ClearWatch(id)
		return sub, nil
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		t.Stop(sub)
		return nil, errors.New("start tracker: tracker is closed")
	}
	t.subs[sub] = struct{}{}
	t.mu.Unlock()

	t.log.Info("position watch started", zap.Int64("watch_id", int64(id)), zap.Bool("high_accuracy", t.opts.HighAccuracy))
	return sub, nil
}

// Stop releases the subscription. Stopping twice, or stopping a subscription
// that already failed, has no effect.
func (t *LocationTracker) Stop(sub *Subscription) {
	if sub == nil {
		return
	}

	t.mu.Lock()
	delete(t.subs, sub)
	t.mu.Unlock()

	sub.release()
}

// Close stops every live subscription and refuses new ones.
func (t *LocationTracker) Close() {
	t.mu.Lock()
	t.closed = true
	subs := make([]*Subscription, 0, len(t.subs))
	for s := range t.subs {
		subs = append(subs, s)
	}
	t.subs = make(map[*Subscription]struct{})
	t.mu.Unlock()

	for _, s := range subs {
		s.release()
	}
}

// Active reports how many subscriptions are still registered.
func (t *LocationTracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Done reports whether the subscription is stopped or failed.
func (s *Subscription) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Subscription) release() {
	s.mu.Lock()
	s.done = true
	if s.released || !s.registered {
		s.mu.Unlock()
		return
	}
	s.released = true
	id := s.id
	s.mu.Unlock()

	s.tracker.source.ClearWatch(id)
	s.tracker.log.Info("position watch stopped", zap.Int64("watch_id", int64(id)))
}

func (s *Subscription) handleReading(r domain.Reading) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	if err := r.Coordinate.Validate(); err != nil {
		s.mu.Unlock()
		s.tracker.log.Warn("dropping invalid reading", zap.Error(err))
		return
	}
	if !s.last.IsZero() && !r.Timestamp.After(s.last) {
		s.mu.Unlock()
		s.tracker.log.Debug("dropping stale reading",
			zap.Time("reading_ts", r.Timestamp),
			zap.Time("last_ts", s.last),
		)
		return
	}
	s.last = r.Timestamp
	onUpdate := s.onUpdate
	s.mu.Unlock()

	onUpdate(r.Coordinate)
}

func (s *Subscription) handleFailure(err error) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	onError := s.onError
	s.mu.Unlock()

	if !errors.Is(err, domain.ErrPositionUnavailable) {
		err = fmt.Errorf("%w: %w", domain.ErrPositionUnavailable, err)
	}
	s.tracker.log.Warn("position watch failed", zap.Error(err))

	s.tracker.Stop(s)
	onError(err)
}
