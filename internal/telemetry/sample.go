// Package telemetry defines the decoded telemetry data model and the decoder
// that turns raw session payloads into per-lap views.
package telemetry

import "time"

// Sample represents one per-tick telemetry record within a session.
type Sample struct {
	LapIndex    int           `json:"lap_index"`     // Lap counter, non-negative
	Distance    float64       `json:"distance"`      // Meters along track
	PositionX   float64       `json:"position_x"`    // World position
	PositionY   float64       `json:"position_y"`
	PositionZ   float64       `json:"position_z"`
	CarSpeed    float64       `json:"car_speed"`     // km/h
	Throttle    float64       `json:"throttle"`      // 0-100 after normalization
	Brake       float64       `json:"brake"`         // 0-100 after normalization
	Steering    float64       `json:"steering"`      // Steering input
	CurrentGear int           `json:"current_gear"`  // Selected gear, 0 = neutral/reverse
	RPM         float64       `json:"rpm"`           // Engine speed
	CurrentFuel float64       `json:"current_fuel"`  // Remaining fuel
	LapTime     time.Duration `json:"lap_time"`      // Last completed lap time, 0 if none
	TimeOnTrack time.Duration `json:"time_on_track"` // Elapsed since session start

	// Optional per-wheel scalars; zero when the source omits them.
	TyreTempFL float64 `json:"tyre_temp_fl,omitempty"`
	TyreTempFR float64 `json:"tyre_temp_fr,omitempty"`
	TyreTempRL float64 `json:"tyre_temp_rl,omitempty"`
	TyreTempRR float64 `json:"tyre_temp_rr,omitempty"`
	SuspFL     float64 `json:"susp_fl,omitempty"`
	SuspFR     float64 `json:"susp_fr,omitempty"`
	SuspRL     float64 `json:"susp_rl,omitempty"`
	SuspRR     float64 `json:"susp_rr,omitempty"`
}

// Session is one recorded telemetry capture: an ordered sequence of samples
// plus the car and track codes resolved from the first sample. Sessions are
// immutable once decoded.
type Session struct {
	Key       string   `json:"key"`        // Object-store key the session was fetched from
	CarCode   string   `json:"car_code"`   // May be "" when the source carries no car field
	TrackCode string   `json:"track_code"` // May be "" when the source carries no track field
	Samples   []Sample `json:"samples"`
}

// Lap is a contiguous run of session samples sharing one lap index. Laps are
// derived views over the session's sample slice, never copies.
type Lap struct {
	Index   int      `json:"index"`
	Samples []Sample `json:"samples"`
}

// SampleCount returns the number of samples in the session.
func (s *Session) SampleCount() int {
	return len(s.Samples)
}

// SplitByLap groups the session's samples into laps by contiguous runs of
// equal lap index, in first-seen order. Two non-adjacent runs with the same
// index yield two separate laps; the concatenation of all laps in order
// reconstructs the session exactly.
func SplitByLap(s *Session) []Lap {
	if len(s.Samples) == 0 {
		return nil
	}

	var laps []Lap
	start := 0
	for i := 1; i <= len(s.Samples); i++ {
		if i == len(s.Samples) || s.Samples[i].LapIndex != s.Samples[start].LapIndex {
			laps = append(laps, Lap{
				Index:   s.Samples[start].LapIndex,
				Samples: s.Samples[start:i],
			})
			start = i
		}
	}
	return laps
}

// CurrentLap returns the lap with the highest first-seen position matching
// index, or false when the session contains no such lap.
func CurrentLap(laps []Lap, index int) (Lap, bool) {
	for i := len(laps) - 1; i >= 0; i-- {
		if laps[i].Index == index {
			return laps[i], true
		}
	}
	return Lap{}, false
}
