package services

import (
	"context"
	"errors"
	"saferoom-locator/internal/domain"
	"saferoom-locator/internal/ports"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakePositionSource lets tests drive readings from the test goroutine.
type fakePositionSource struct {
	mu          sync.Mutex
	nextID      ports.WatchID
	watches     map[ports.WatchID]*fakeWatch
	cleared     []ports.WatchID
	lastOpts    ports.WatchOptions
	unsupported bool
}

type fakeWatch struct {
	onReading func(domain.Reading)
	onFailure func(error)
}

func newFakePositionSource() *fakePositionSource {
	return &fakePositionSource{watches: map[ports.WatchID]*fakeWatch{}}
}

func (f *fakePositionSource) Watch(opts ports.WatchOptions, onReading func(domain.Reading), onFailure func(error)) (ports.WatchID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unsupported {
		return 0, errors.New("geolocation is not supported")
	}
	f.nextID++
	f.lastOpts = opts
	f.watches[f.nextID] = &fakeWatch{onReading: onReading, onFailure: onFailure}
	return f.nextID, nil
}

func (f *fakePositionSource) ClearWatch(id ports.WatchID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, id)
	delete(f.watches, id)
}

func (f *fakePositionSource) watch(id ports.WatchID) *fakeWatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.watches[id]
}

// emit delivers a reading to every active watch.
func (f *fakePositionSource) emit(lat, lng float64, ts time.Time) {
	f.mu.Lock()
	ws := make([]*fakeWatch, 0, len(f.watches))
	for _, w := range f.watches {
		ws = append(ws, w)
	}
	f.mu.Unlock()

	for _, w := range ws {
		w.onReading(domain.Reading{Coordinate: domain.Coordinate{Lat: lat, Lng: lng}, Timestamp: ts})
	}
}

func (f *fakePositionSource) fail(err error) {
	f.mu.Lock()
	ws := make([]*fakeWatch, 0, len(f.watches))
	for _, w := range f.watches {
		ws = append(ws, w)
	}
	f.mu.Unlock()

	for _, w := range ws {
		w.onFailure(err)
	}
}

func (f *fakePositionSource) active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watches)
}

func (f *fakePositionSource) clearedIDs() []ports.WatchID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.WatchID(nil), f.cleared...)
}

// fakeSurface records every command it receives.
type fakeSurface struct {
	mu        sync.Mutex
	readyNow  bool
	onReady   func(ports.ViewportHandle)
	centers   []domain.Coordinate
	pans      []domain.Coordinate
	zooms     []int
	placed    map[int]domain.Marker
	nextID    int
	createErr error
}

type fakeViewport struct{ container string }

type fakeMarkerHandle struct{ id int }

func newFakeSurface(readyNow bool) *fakeSurface {
	return &fakeSurface{readyNow: readyNow, placed: map[int]domain.Marker{}}
}

func (f *fakeSurface) CreateViewport(container string, opts domain.ViewportOptions, onReady func(ports.ViewportHandle)) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	f.onReady = onReady
	readyNow := f.readyNow
	f.mu.Unlock()
	if readyNow {
		onReady(&fakeViewport{container: container})
	}
	return nil
}

// signalReady fires the readiness callback captured by CreateViewport.
func (f *fakeSurface) signalReady() {
	f.mu.Lock()
	cb := f.onReady
	f.mu.Unlock()
	cb(&fakeViewport{container: "late"})
}

func (f *fakeSurface) PlaceMarker(h ports.ViewportHandle, m domain.Marker) (ports.MarkerHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.placed[f.nextID] = m
	return fakeMarkerHandle{id: f.nextID}, nil
}

func (f *fakeSurface) RemoveMarker(m ports.MarkerHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := m.(fakeMarkerHandle)
	if _, ok := f.placed[h.id]; !ok {
		return errors.New("unknown marker")
	}
	delete(f.placed, h.id)
	return nil
}

func (f *fakeSurface) SetCenter(h ports.ViewportHandle, c domain.Coordinate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.centers = append(f.centers, c)
}

func (f *fakeSurface) SetZoom(h ports.ViewportHandle, zoom int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zooms = append(f.zooms, zoom)
}

func (f *fakeSurface) PanTo(h ports.ViewportHandle, c domain.Coordinate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pans = append(f.pans, c)
}

func (f *fakeSurface) centerCalls() []domain.Coordinate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Coordinate(nil), f.centers...)
}

func (f *fakeSurface) panCalls() []domain.Coordinate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Coordinate(nil), f.pans...)
}

func (f *fakeSurface) zoomCalls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.zooms...)
}

func (f *fakeSurface) placedMarkers() []domain.Marker {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Marker, 0, len(f.placed))
	for _, m := range f.placed {
		out = append(out, m)
	}
	return out
}

// fakeFetcher hands each call a channel the test resolves explicitly.
type fakeFetcher struct {
	mu    sync.Mutex
	calls []fetchCall
}

type fetchCall struct {
	ref domain.Coordinate
	out chan FetchResult
}

func (f *fakeFetcher) FetchAsync(ctx context.Context, ref domain.Coordinate) <-chan FetchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan FetchResult, 1)
	f.calls = append(f.calls, fetchCall{ref: ref, out: ch})
	return ch
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) call(i int) fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func (f *fakeFetcher) refs() []domain.Coordinate {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Coordinate, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.ref)
	}
	return out
}

func (f *fakeFetcher) resolve(i int, shelters ...domain.Shelter) {
	c := f.call(i)
	c.out <- FetchResult{Shelters: shelters}
	close(c.out)
}

func (f *fakeFetcher) reject(i int, err error) {
	c := f.call(i)
	c.out <- FetchResult{Err: err}
	close(c.out)
}

// fakeShelterSource is a ShelterSource returning canned data.
type fakeShelterSource struct {
	shelters []domain.Shelter
	err      error
	delay    time.Duration
}

func (f *fakeShelterSource) ListShelters(ctx context.Context, near domain.Coordinate) ([]domain.Shelter, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.shelters, nil
}

type recordingSelection struct {
	mu       sync.Mutex
	selected []domain.Shelter
}

func (r *recordingSelection) ShelterSelected(s domain.Shelter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = append(r.selected, s)
}

type recordingStatus struct {
	mu   sync.Mutex
	errs []error
}

func (r *recordingStatus) PositionFailed(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recordingSelection) all() []domain.Shelter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Shelter(nil), r.selected...)
}

func (r *recordingStatus) all() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func (r *recordingStatus) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func located(id string, lat, lng float64, available, public bool) domain.Shelter {
	return domain.Shelter{
		ID:        id,
		Location:  &domain.Coordinate{Lat: lat, Lng: lng},
		Available: available,
		IsPublic:  public,
	}
}
