package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gt7-dashboard/internal/telemetry"
)

func sessionWithLapTimes(times ...float64) *telemetry.Session {
	s := &telemetry.Session{Key: "k.json"}
	for _, secs := range times {
		s.Samples = append(s.Samples, telemetry.Sample{
			LapTime: time.Duration(secs * float64(time.Second)),
		})
	}
	return s
}

func TestBestLapIgnoresNonPositiveTimes(t *testing.T) {
	// [0, 98.2, 97.5] -> valid best is 97.5, not 0
	best, ok := BestLap(sessionWithLapTimes(0, 98.2, 97.5))
	require.True(t, ok)
	assert.Equal(t, 97500*time.Millisecond, best)
}

func TestBestLapInvalidWhenNoPositiveTime(t *testing.T) {
	_, ok := BestLap(sessionWithLapTimes(0, 0, -1))
	assert.False(t, ok)

	_, ok = BestLap(&telemetry.Session{Key: "empty.json"})
	assert.False(t, ok)
}

func TestSummarizeLaps(t *testing.T) {
	s := &telemetry.Session{
		Key: "k.json",
		Samples: []telemetry.Sample{
			{LapIndex: 0, CarSpeed: 100, Throttle: 50, Brake: 0},
			{LapIndex: 0, CarSpeed: 200, Throttle: 100, Brake: 95},
			{LapIndex: 1, CarSpeed: 150, Throttle: 80, Brake: 10},
		},
	}

	summaries := SummarizeLaps(s)
	require.Len(t, summaries, 2)

	assert.Equal(t, 0, summaries[0].Index)
	assert.Equal(t, 2, summaries[0].SampleCount)
	assert.Equal(t, 200.0, summaries[0].TopSpeed)
	assert.InDelta(t, 150.0, summaries[0].MeanSpeed, 1e-9)
	assert.InDelta(t, 75.0, summaries[0].MeanThrottle, 1e-9)
	assert.InDelta(t, 0.5, summaries[0].FullBrakeShare, 1e-9)

	assert.Equal(t, 1, summaries[1].Index)
	assert.InDelta(t, 0.0, summaries[1].FullBrakeShare, 1e-9)
}

func TestAggregateBestLaps(t *testing.T) {
	sessions := []*telemetry.Session{
		sessionWithLapTimes(100),
		sessionWithLapTimes(90),
		sessionWithLapTimes(0), // no valid best, contributes nothing
	}

	agg := AggregateBestLaps(sessions)
	assert.Equal(t, 2, agg.Sessions)
	assert.Equal(t, 90*time.Second, agg.MinBest)
	assert.Equal(t, 95*time.Second, agg.MeanBest)
}

func TestAggregateBestLapsEmpty(t *testing.T) {
	agg := AggregateBestLaps(nil)
	assert.Equal(t, 0, agg.Sessions)
	assert.Equal(t, time.Duration(0), agg.MinBest)
}
