package shelters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"saferoom-locator/internal/domain"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func serveRooms(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile("testdata/rooms.json")
	require.NoError(t, err)
	return b
}

func newTestSource(t *testing.T, srv *httptest.Server, mutate ...func(*HTTPOptions)) *HTTPSource {
	t.Helper()
	opts := HTTPOptions{
		BaseURL:     srv.URL + "/api/",
		RoomsPath:   "/rooms",
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
		Client:      srv.Client(),
		Logger:      zaptest.NewLogger(t),
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	s, err := NewHTTPSource(opts)
	require.NoError(t, err)
	return s
}

func TestHTTPSourceDecodesRooms(t *testing.T) {
	body := serveRooms(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rooms", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	got, err := newTestSource(t, srv).ListShelters(context.Background(), domain.Coordinate{Lat: 32.8, Lng: 34.9})
	require.NoError(t, err)
	require.Len(t, got, 3)

	first := got[0]
	assert.Equal(t, "65f0c1", first.ID)
	assert.Equal(t, "Herzl 12 basement", first.Title)
	assert.Equal(t, domain.Address{City: "Haifa", Street: "Herzl", Number: 12, Floor: -1}, first.Address)
	require.NotNil(t, first.Location)
	assert.Equal(t, domain.Coordinate{Lat: 32.8156, Lng: 34.9892}, *first.Location)
	assert.Equal(t, []string{"https://img.example.org/65f0c1.jpg"}, first.Images)
	assert.Equal(t, 40, first.Capacity)
	assert.True(t, first.Available)
	assert.True(t, first.Accessible)
	assert.True(t, first.IsPublic)
	require.NotNil(t, first.CreatedAt)
	assert.Equal(t, time.Date(2024, 3, 12, 8, 30, 0, 0, time.UTC), first.CreatedAt.UTC())

	assert.Equal(t, 7, got[1].Address.Apartment)
	assert.Nil(t, got[1].CreatedAt)

	assert.Nil(t, got[2].Location)
	assert.False(t, got[2].HasLocation())
}

func TestHTTPSourceSendsLocationWhenEnabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "32.81", r.URL.Query().Get("lat"))
		assert.Equal(t, "-34.5", r.URL.Query().Get("lng"))
		_, _ = w.Write([]byte(`{"rooms":[]}`))
	}))
	defer srv.Close()

	s := newTestSource(t, srv, func(o *HTTPOptions) { o.SendLocation = true })
	got, err := s.ListShelters(context.Background(), domain.Coordinate{Lat: 32.81, Lng: -34.5})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHTTPSourceRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"rooms":[{"_id":"a","location":{"lat":1,"lng":2}}]}`))
	}))
	defer srv.Close()

	got, err := newTestSource(t, srv).ListShelters(context.Background(), domain.Coordinate{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestHTTPSourceGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestSource(t, srv).ListShelters(context.Background(), domain.Coordinate{})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())

	var he *httpStatusError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusTooManyRequests, he.Code)
	assert.Equal(t, "overloaded", he.Body)
}

func TestHTTPSourceDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestSource(t, srv).ListShelters(context.Background(), domain.Coordinate{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPSourceRejectsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := newTestSource(t, srv).ListShelters(context.Background(), domain.Coordinate{})
	assert.ErrorContains(t, err, "decode rooms")
}

func TestHTTPSourceHonoursCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSource(t, srv).ListShelters(ctx, domain.Coordinate{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewHTTPSourceRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPSource(HTTPOptions{BaseURL: "  "})
	assert.Error(t, err)
}

func TestDecodeRoomsDropsHalfLocations(t *testing.T) {
	got, err := DecodeRooms(stringsReader(`{"rooms":[{"_id":"x","location":{"lat":3}}]}`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Location)
}
