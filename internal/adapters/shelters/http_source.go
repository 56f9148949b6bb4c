// Package shelters holds the ShelterSource adapters: the backend HTTP client
// and an in-memory source fed from a rooms document.
package shelters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"saferoom-locator/internal/domain"
	"saferoom-locator/internal/platform/obs"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTTPSource implements ShelterSource against the shelter backend's room
// listing. It is safe for concurrent use.
type HTTPSource struct {
	session      *http.Client
	endpoint     string
	sendLocation bool
	maxAttempts  int
	backoff      time.Duration
	log          *zap.Logger
}

// HTTPOptions configures an HTTPSource. With SendLocation set, requests
// carry lat/lng query parameters so the backend may filter by distance.
type HTTPOptions struct {
	BaseURL      string
	RoomsPath    string
	SendLocation bool
	Timeout      time.Duration
	MaxAttempts  int
	Backoff      time.Duration
	Client       *http.Client
	Logger       *zap.Logger
}

func NewHTTPSource(opts HTTPOptions) (*HTTPSource, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("shelter backend base url is empty")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse shelter backend url: %w", err)
	}

	path := opts.RoomsPath
	if path == "" {
		path = "/rooms"
	}

	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 4
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &HTTPSource{
		session:      client,
		endpoint:     base + path,
		sendLocation: opts.SendLocation,
		maxAttempts:  attempts,
		backoff:      backoff,
		log:          log.Named("backend"),
	}, nil
}

func (s *HTTPSource) ListShelters(ctx context.Context, near domain.Coordinate) (_ []domain.Shelter, err error) {
	defer obs.Time(ctx, "backend.ListShelters")(&err)

	target := s.requestURL(near)

	resp, err := s.doWithRetry(ctx, func() (*http.Request, error) {
		return s.newRequest(ctx, http.MethodGet, target)
	})
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", s.endpoint, err)
	}
	defer resp.Body.Close()

	shelters, err := DecodeRooms(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", s.endpoint, err)
	}
	return shelters, nil
}

func (s *HTTPSource) requestURL(near domain.Coordinate) string {
	if !s.sendLocation {
		return s.endpoint
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(near.Lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(near.Lng, 'f', -1, 64))
	return s.endpoint + "?" + q.Encode()
}
