//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/storm-track-verification/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_ReverseGeocode_Land(t *testing.T) {
	c := smokeClient(t)

	// Darwin, Northern Territory
	result, err := c.ReverseGeocode(context.Background(), -12.4634, 130.8411)
	require.NoError(t, err)

	assert.Contains(t, result.FormattedAddress, "Darwin")
	assert.NotEmpty(t, result.PlaceName)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestSmoke_ReverseGeocode_OpenOcean(t *testing.T) {
	c := smokeClient(t)

	// Central Indian Ocean; any response is fine as long as it is not an error.
	_, err := c.ReverseGeocode(context.Background(), -20.0, 80.0)
	require.NoError(t, err)
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedGeocoder(c, 10, observability.NewMetricsForTesting())

	r1, err := cached.ReverseGeocode(context.Background(), -19.2590, 146.8169)
	require.NoError(t, err)
	assert.Contains(t, r1.FormattedAddress, "Townsville")

	r2, err := cached.ReverseGeocode(context.Background(), -19.2590, 146.8169)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
