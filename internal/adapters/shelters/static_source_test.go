package shelters

import (
	"context"
	"io"
	"saferoom-locator/internal/domain"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringsReader(s string) io.Reader { return strings.NewReader(s) }

func TestStaticSourceFromFile(t *testing.T) {
	src, err := LoadStaticSource("testdata/rooms.json")
	require.NoError(t, err)

	got, err := src.ListShelters(context.Background(), domain.Coordinate{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "65f0c2", got[1].ID)

	// Callers own the returned slice.
	got[0].ID = "mutated"
	again, err := src.ListShelters(context.Background(), domain.Coordinate{})
	require.NoError(t, err)
	assert.Equal(t, "65f0c1", again[0].ID)
}

func TestStaticSourceMissingFile(t *testing.T) {
	_, err := LoadStaticSource("testdata/nope.json")
	assert.Error(t, err)
}

func TestStaticSourceCancelled(t *testing.T) {
	src := NewStaticSource([]domain.Shelter{{ID: "a"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.ListShelters(ctx, domain.Coordinate{})
	assert.ErrorIs(t, err, context.Canceled)
}
