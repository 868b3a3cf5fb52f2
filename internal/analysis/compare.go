package analysis

import (
	"github.com/yourusername/gt7-dashboard/internal/refdata"
	"github.com/yourusername/gt7-dashboard/internal/telemetry"
)

// SeriesPoint is one distance-aligned point of an overlay series.
type SeriesPoint struct {
	Distance float64 `json:"distance"` // Meters along track, the shared x-axis
	Speed    float64 `json:"speed"`    // km/h
	X        float64 `json:"x"`        // World position for driving-line plots
	Z        float64 `json:"z"`
}

// Overlay is one session's contribution to a comparison: name-resolved car
// and track plus the full series at native sampling rate. No resampling or
// interpolation is performed; differing sampling rates are plotted as given.
type Overlay struct {
	SessionKey string        `json:"session_key"`
	CarName    string        `json:"car_name"`
	TrackName  string        `json:"track_name"`
	Series     []SeriesPoint `json:"series"`
}

// Compare builds distance-aligned overlays for up to MaxCompareSessions
// sessions. A selection beyond the bound is rejected before any computation
// with ErrTooManySessions.
func Compare(sessions []*telemetry.Session, catalog *refdata.Catalog) ([]Overlay, error) {
	if len(sessions) > MaxCompareSessions {
		return nil, ErrTooManySessions
	}

	overlays := make([]Overlay, 0, len(sessions))
	for _, s := range sessions {
		series := make([]SeriesPoint, len(s.Samples))
		for i, sample := range s.Samples {
			series[i] = SeriesPoint{
				Distance: sample.Distance,
				Speed:    sample.CarSpeed,
				X:        sample.PositionX,
				Z:        sample.PositionZ,
			}
		}

		overlays = append(overlays, Overlay{
			SessionKey: s.Key,
			CarName:    catalog.Cars.Lookup(s.CarCode).Label("car"),
			TrackName:  catalog.Tracks.Lookup(s.TrackCode).Label("track"),
			Series:     series,
		})
	}
	return overlays, nil
}
