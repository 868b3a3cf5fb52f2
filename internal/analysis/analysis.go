// Package analysis derives comparable views and scalar aggregates from
// decoded telemetry sessions.
package analysis

import (
	"errors"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/gt7-dashboard/internal/telemetry"
)

// MaxCompareSessions bounds how many sessions an overlay may hold. The bound
// is enforced on input, before any computation.
const MaxCompareSessions = 4

// ErrTooManySessions is returned when a comparison selection exceeds
// MaxCompareSessions; the existing selection is left unchanged.
var ErrTooManySessions = errors.New("too many sessions selected for comparison")

// BestLap returns the strict minimum of the session's lap-time field over all
// samples, considering only strictly positive values. ok is false when the
// session carries no positive lap time, in which case the session contributes
// no leaderboard entry.
func BestLap(s *telemetry.Session) (best time.Duration, ok bool) {
	for _, sample := range s.Samples {
		if sample.LapTime <= 0 {
			continue
		}
		if !ok || sample.LapTime < best {
			best = sample.LapTime
			ok = true
		}
	}
	return best, ok
}

// LapSummary aggregates one lap for the session detail table.
type LapSummary struct {
	Index          int     `json:"index"`
	SampleCount    int     `json:"sample_count"`
	TopSpeed       float64 `json:"top_speed"`        // km/h
	MeanSpeed      float64 `json:"mean_speed"`       // km/h
	MeanThrottle   float64 `json:"mean_throttle"`    // percent
	FullBrakeShare float64 `json:"full_brake_share"` // fraction of samples braking >= 90%
}

// SummarizeLaps computes per-lap aggregates across the session's laps.
func SummarizeLaps(s *telemetry.Session) []LapSummary {
	laps := telemetry.SplitByLap(s)
	summaries := make([]LapSummary, 0, len(laps))

	for _, lap := range laps {
		speeds := make([]float64, len(lap.Samples))
		throttles := make([]float64, len(lap.Samples))
		fullBrake := 0

		top := 0.0
		for i, sample := range lap.Samples {
			speeds[i] = sample.CarSpeed
			throttles[i] = sample.Throttle
			if sample.CarSpeed > top {
				top = sample.CarSpeed
			}
			if sample.Brake >= 90 {
				fullBrake++
			}
		}

		summaries = append(summaries, LapSummary{
			Index:          lap.Index,
			SampleCount:    len(lap.Samples),
			TopSpeed:       top,
			MeanSpeed:      stat.Mean(speeds, nil),
			MeanThrottle:   stat.Mean(throttles, nil),
			FullBrakeShare: float64(fullBrake) / float64(len(lap.Samples)),
		})
	}
	return summaries
}

// Aggregate holds simple scalar aggregates of valid best laps across
// sessions, for leaderboard-style ranking context.
type Aggregate struct {
	Sessions int           `json:"sessions"`
	MinBest  time.Duration `json:"min_best"`
	MeanBest time.Duration `json:"mean_best"`
}

// AggregateBestLaps computes min and mean of the valid best laps. Sessions
// without a valid best lap contribute nothing.
func AggregateBestLaps(sessions []*telemetry.Session) Aggregate {
	var bests []float64
	for _, s := range sessions {
		if best, ok := BestLap(s); ok {
			bests = append(bests, best.Seconds())
		}
	}
	if len(bests) == 0 {
		return Aggregate{}
	}

	minBest := bests[0]
	for _, b := range bests[1:] {
		if b < minBest {
			minBest = b
		}
	}

	return Aggregate{
		Sessions: len(bests),
		MinBest:  time.Duration(minBest * float64(time.Second)),
		MeanBest: time.Duration(stat.Mean(bests, nil) * float64(time.Second)),
	}
}
