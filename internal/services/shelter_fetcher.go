package services

import (
	"context"
	"errors"
	"fmt"
	"saferoom-locator/internal/domain"
	"saferoom-locator/internal/platform/obs"
	"saferoom-locator/internal/ports"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShelterFetcher requests the shelter set around a reference location.
//
// It does not guard on map readiness and does not deduplicate concurrent
// calls; both are the caller's concern.
type ShelterFetcher struct {
	source  ports.ShelterSource
	timeout time.Duration
	log     *zap.Logger
}

// NewShelterFetcher bounds each call by timeout (zero means no bound).
func NewShelterFetcher(source ports.ShelterSource, timeout time.Duration, log *zap.Logger) *ShelterFetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &ShelterFetcher{source: source, timeout: timeout, log: log.Named("fetcher")}
}

// Fetch returns a snapshot of the shelters near reference. Failures wrap
// domain.ErrNetworkFailure.
func (f *ShelterFetcher) Fetch(ctx context.Context, reference domain.Coordinate) (_ []domain.Shelter, err error) {
	if err := reference.Validate(); err != nil {
		return nil, fmt.Errorf("fetch shelters: reference: %w", err)
	}

	ctx = obs.WithLogger(obs.WithRequestID(ctx, uuid.NewString()), f.log)
	defer obs.Time(ctx, "shelters.Fetch")(&err)

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	shelters, err := f.source.ListShelters(ctx, reference)
	if err != nil {
		if errors.Is(err, domain.ErrNetworkFailure) {
			return nil, fmt.Errorf("fetch shelters near %s: %w", reference, err)
		}
		return nil, fmt.Errorf("fetch shelters near %s: %w: %w", reference, domain.ErrNetworkFailure, err)
	}

	snapshot := make([]domain.Shelter, len(shelters))
	copy(snapshot, shelters)
	return snapshot, nil
}

// FetchResult is the outcome of an asynchronous fetch.
type FetchResult struct {
	Shelters []domain.Shelter
	Err      error
}

// FetchAsync starts Fetch on its own goroutine. The returned channel yields
// exactly one result and is then closed.
func (f *ShelterFetcher) FetchAsync(ctx context.Context, reference domain.Coordinate) <-chan FetchResult {
	out := make(chan FetchResult, 1)
	go func() {
		defer close(out)
		shelters, err := f.Fetch(ctx, reference)
		out <- FetchResult{Shelters: shelters, Err: err}
	}()
	return out
}
