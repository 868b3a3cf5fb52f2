package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gt7-dashboard/internal/refdata"
	"github.com/yourusername/gt7-dashboard/internal/telemetry"
)

func testCatalog(t *testing.T) *refdata.Catalog {
	t.Helper()

	cars, err := refdata.Parse("car", strings.NewReader("ID,ShortName,Maker\ngr3-rc,GT-R Gr.3,Nissan\n"))
	require.NoError(t, err)
	tracks, err := refdata.Parse("track", strings.NewReader("ID,Name\nspa,Spa-Francorchamps\n"))
	require.NoError(t, err)

	return &refdata.Catalog{Cars: cars, Tracks: tracks}
}

func TestCompareBuildsOverlays(t *testing.T) {
	catalog := testCatalog(t)
	sessions := []*telemetry.Session{
		{
			Key:       "a.json",
			CarCode:   "gr3-rc",
			TrackCode: "spa",
			Samples: []telemetry.Sample{
				{Distance: 0, CarSpeed: 100, PositionX: 1, PositionZ: 2},
				{Distance: 10, CarSpeed: 120, PositionX: 3, PositionZ: 4},
			},
		},
	}

	overlays, err := Compare(sessions, catalog)
	require.NoError(t, err)
	require.Len(t, overlays, 1)

	assert.Equal(t, "GT-R Gr.3", overlays[0].CarName)
	assert.Equal(t, "Spa-Francorchamps", overlays[0].TrackName)
	require.Len(t, overlays[0].Series, 2)
	assert.Equal(t, 10.0, overlays[0].Series[1].Distance)
	assert.Equal(t, 120.0, overlays[0].Series[1].Speed)
}

func TestCompareResolvesUnknownCodes(t *testing.T) {
	catalog := testCatalog(t)
	sessions := []*telemetry.Session{
		{Key: "b.json", CarCode: "", TrackCode: "nope"},
	}

	overlays, err := Compare(sessions, catalog)
	require.NoError(t, err)

	assert.Equal(t, "Unknown car code: ", overlays[0].CarName)
	assert.Equal(t, "Unknown track code: nope", overlays[0].TrackName)
}

func TestCompareRejectsOversizedSelection(t *testing.T) {
	catalog := testCatalog(t)
	sessions := make([]*telemetry.Session, MaxCompareSessions+1)
	for i := range sessions {
		sessions[i] = &telemetry.Session{Key: "s.json"}
	}

	_, err := Compare(sessions, catalog)
	assert.ErrorIs(t, err, ErrTooManySessions)

	// Exactly the bound is fine
	_, err = Compare(sessions[:MaxCompareSessions], catalog)
	assert.NoError(t, err)
}
