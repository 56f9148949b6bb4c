package services

import (
	"context"
	"fmt"
	"saferoom-locator/internal/domain"
	"saferoom-locator/internal/ports"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Fetcher is the shelter fetch capability MapSync drives. FetchAsync must
// return without blocking; requests are issued in call order.
type Fetcher interface {
	FetchAsync(ctx context.Context, reference domain.Coordinate) <-chan FetchResult
}

// MapController is the viewport capability MapSync drives. *MapSession
// implements it.
type MapController interface {
	Ready() <-chan struct{}
	CenterOn(c domain.Coordinate, zoom int)
	PanTo(c domain.Coordinate)
	SetZoom(zoom int)
	RenderMarkers(markers []domain.Marker)
}

// SyncSnapshot is a read-only view of the orchestrator state.
type SyncSnapshot struct {
	Position *domain.Coordinate
	Shelters []domain.Shelter
	Markers  []domain.Marker
	MapReady bool
	Tracking bool
	Issued   uint64
	Applied  uint64
}

type event interface{ isEvent() }

type positionEvent struct{ coord domain.Coordinate }

type positionFailedEvent struct{ err error }

type fetchDoneEvent struct {
	seq      uint64
	shelters []domain.Shelter
	err      error
}

type recenterEvent struct{}

type restartEvent struct{}

func (positionEvent) isEvent()       {}
func (positionFailedEvent) isEvent() {}
func (fetchDoneEvent) isEvent()      {}
func (recenterEvent) isEvent()       {}
func (restartEvent) isEvent()        {}

// MapSync wires tracker, map session, fetcher and classifier into one
// pipeline driven by a single loop goroutine (Run). All orchestrator state is
// written on that goroutine only; other goroutines read it through Snapshot.
//
// Fetches carry a sequence number taken when they are issued. A response is
// applied only if it is newer than the last applied one, so a slow early
// response can never overwrite a later one.
type MapSync struct {
	tracker    *LocationTracker
	session    MapController
	fetcher    Fetcher
	selection  ports.SelectionSink
	status     ports.StatusSink
	followZoom int
	log        *zap.Logger

	events chan event
	snap   atomic.Pointer[SyncSnapshot]

	// owned by the loop goroutine
	ready    <-chan struct{}
	mapReady bool
	sub      *Subscription
	position *domain.Coordinate
	shelters []domain.Shelter
	issued   uint64
	applied  uint64
	inflight sync.WaitGroup
}

type MapSyncOptions struct {
	FollowZoom int
	Selection  ports.SelectionSink
	Status     ports.StatusSink
	Logger     *zap.Logger
}

func NewMapSync(tracker *LocationTracker, session MapController, fetcher Fetcher, opts MapSyncOptions) *MapSync {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := &MapSync{
		tracker:    tracker,
		session:    session,
		fetcher:    fetcher,
		selection:  opts.Selection,
		status:     opts.Status,
		followZoom: opts.FollowZoom,
		log:        log.Named("sync"),
		events:     make(chan event, 16),
	}
	if m.followZoom == 0 {
		m.followZoom = 20
	}
	if m.selection == nil {
		m.selection = nopSelection{}
	}
	if m.status == nil {
		m.status = nopStatus{}
	}
	m.snap.Store(&SyncSnapshot{})
	return m
}

// Run starts tracking and processes events until ctx ends. It returns once
// the tracker subscription is released and in-flight fetches have finished.
func (m *MapSync) Run(ctx context.Context) error {
	m.startTracking(ctx)
	defer func() {
		m.tracker.Stop(m.sub)
		m.inflight.Wait()
	}()

	m.ready = m.session.Ready()
	m.publish()
	for {
		ready := m.ready
		if m.mapReady {
			ready = nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ready:
			m.mapReady = true
			m.onMapReady(ctx)
		case ev := <-m.events:
			m.handle(ctx, ev)
		}
	}
}

// Select surfaces the shelter with id to the selection sink. It does not
// change orchestrator state.
func (m *MapSync) Select(id string) (domain.Shelter, error) {
	snap := m.snap.Load()
	for _, s := range snap.Shelters {
		if s.ID == id {
			m.selection.ShelterSelected(s)
			return s, nil
		}
	}
	return domain.Shelter{}, fmt.Errorf("select shelter %q: %w", id, domain.ErrShelterNotFound)
}

// Recenter pans the camera back to the tracked position at follow zoom.
func (m *MapSync) Recenter(ctx context.Context) error {
	return m.post(ctx, recenterEvent{})
}

// RestartTracking starts a new position subscription if the current one
// has stopped or failed.
func (m *MapSync) RestartTracking(ctx context.Context) error {
	return m.post(ctx, restartEvent{})
}

// Snapshot returns the latest published state.
func (m *MapSync) Snapshot() SyncSnapshot {
	return *m.snap.Load()
}

func (m *MapSync) handle(ctx context.Context, ev event) {
	switch e := ev.(type) {
	case positionEvent:
		m.onPosition(ctx, e.coord)
	case positionFailedEvent:
		m.log.Warn("position tracking failed; keeping last markers", zap.Error(e.err))
		m.status.PositionFailed(e.err)
		m.publish()
	case fetchDoneEvent:
		m.onFetchDone(e)
	case recenterEvent:
		m.onRecenter()
	case restartEvent:
		if m.sub != nil && !m.sub.Done() {
			return
		}
		m.startTracking(ctx)
		m.publish()
	}
}

func (m *MapSync) startTracking(ctx context.Context) {
	sub, err := m.tracker.Start(
		func(c domain.Coordinate) { _ = m.post(ctx, positionEvent{coord: c}) },
		func(err error) { _ = m.post(ctx, positionFailedEvent{err: err}) },
	)
	if err != nil {
		m.log.Warn("position tracking unavailable", zap.Error(err))
		m.status.PositionFailed(err)
		return
	}
	m.sub = sub
}

func (m *MapSync) onPosition(ctx context.Context, c domain.Coordinate) {
	m.position = &c

	if m.observeReady() {
		m.syncCycle(ctx, c)
	}
	m.publish()
}

// onMapReady runs the cycle a position update would have triggered had the
// map been ready when it arrived.
func (m *MapSync) onMapReady(ctx context.Context) {
	if m.position != nil {
		m.syncCycle(ctx, *m.position)
	}
	m.publish()
}

// observeReady notices a ready map even if the loop has not yet selected the
// ready channel, so the pending ready case does not repeat the cycle.
func (m *MapSync) observeReady() bool {
	if m.mapReady {
		return true
	}
	select {
	case <-m.ready:
		m.mapReady = true
	default:
	}
	return m.mapReady
}

func (m *MapSync) syncCycle(ctx context.Context, c domain.Coordinate) {
	m.session.CenterOn(c, m.followZoom)

	m.issued++
	seq := m.issued

	pending := m.fetcher.FetchAsync(ctx, c)

	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		var res FetchResult
		select {
		case r, ok := <-pending:
			if !ok {
				return
			}
			res = r
		case <-ctx.Done():
			return
		}
		_ = m.post(ctx, fetchDoneEvent{seq: seq, shelters: res.Shelters, err: res.Err})
	}()
}

func (m *MapSync) onFetchDone(e fetchDoneEvent) {
	if e.err != nil {
		m.log.Warn("shelter fetch failed; keeping previous shelters",
			zap.Uint64("seq", e.seq),
			zap.Error(e.err),
		)
		return
	}
	if e.seq <= m.applied {
		m.log.Debug("discarding stale shelter response",
			zap.Uint64("seq", e.seq),
			zap.Uint64("applied", m.applied),
		)
		return
	}

	m.applied = e.seq
	m.shelters = e.shelters
	m.publish()
	m.log.Debug("shelters applied", zap.Uint64("seq", e.seq), zap.Int("shelters", len(e.shelters)))
}

func (m *MapSync) onRecenter() {
	if m.position == nil {
		return
	}
	m.session.PanTo(*m.position)
	m.session.SetZoom(m.followZoom)
}

func (m *MapSync) publish() {
	markers := BuildMarkers(m.position, m.shelters)
	m.session.RenderMarkers(markers)

	var pos *domain.Coordinate
	if m.position != nil {
		p := *m.position
		pos = &p
	}
	m.snap.Store(&SyncSnapshot{
		Position: pos,
		Shelters: m.shelters,
		Markers:  markers,
		MapReady: m.mapReady,
		Tracking: m.sub != nil && !m.sub.Done(),
		Issued:   m.issued,
		Applied:  m.applied,
	})
}

func (m *MapSync) post(ctx context.Context, ev event) error {
	select {
	case m.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type nopSelection struct{}

func (nopSelection) ShelterSelected(domain.Shelter) {}

type nopStatus struct{}

func (nopStatus) PositionFailed(error) {}
