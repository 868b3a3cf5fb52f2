package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMalformedSession indicates a raw payload that is not a non-empty JSON
// array of flat records.
var ErrMalformedSession = errors.New("malformed session payload")

// Field alias lists, tried in priority order. Telemetry exporters disagree on
// key names, so the decoder picks the first alias present in a record.
var (
	carAliases      = []string{"car_code", "car_id", "car"}
	trackAliases    = []string{"track_code", "track_id", "course_code", "track"}
	lapAliases      = []string{"lap_index", "current_lap", "lap"}
	distanceAliases = []string{"distance", "lap_distance", "distance_m"}
	speedAliases    = []string{"car_speed", "speed", "speed_kmh"}
	throttleAliases = []string{"throttle", "throttle_pct"}
	brakeAliases    = []string{"brake", "brake_pct"}
	steeringAliases = []string{"steering", "steering_angle"}
	gearAliases     = []string{"current_gear", "gear"}
	rpmAliases      = []string{"rpm", "engine_rpm"}
	fuelAliases     = []string{"current_fuel", "fuel_level", "fuel"}
	lapTimeAliases  = []string{"last_lap_time", "lap_time", "best_lap_time"}
	elapsedAliases  = []string{"time_on_track", "timestamp", "elapsed"}

	posXAliases = []string{"position_x", "pos_x", "x"}
	posYAliases = []string{"position_y", "pos_y", "y"}
	posZAliases = []string{"position_z", "pos_z", "z"}
)

// Decode parses a raw session payload (a JSON array of flat records) into a
// Session. The car and track codes are resolved from the first record via the
// alias lists; if no alias is present the code is "" and a later reference
// lookup legitimately misses. Decode returns ErrMalformedSession only when
// the payload is not a non-empty array of records.
func Decode(key string, raw []byte) (*Session, error) {
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty record array", ErrMalformedSession)
	}

	session := &Session{
		Key:       key,
		CarCode:   stringField(records[0], carAliases),
		TrackCode: stringField(records[0], trackAliases),
		Samples:   make([]Sample, 0, len(records)),
	}

	for _, rec := range records {
		session.Samples = append(session.Samples, decodeSample(rec))
	}

	normalizePedals(session.Samples)
	return session, nil
}

func decodeSample(rec map[string]any) Sample {
	return Sample{
		LapIndex:    intField(rec, lapAliases),
		Distance:    floatField(rec, distanceAliases),
		PositionX:   floatField(rec, posXAliases),
		PositionY:   floatField(rec, posYAliases),
		PositionZ:   floatField(rec, posZAliases),
		CarSpeed:    floatField(rec, speedAliases),
		Throttle:    floatField(rec, throttleAliases),
		Brake:       floatField(rec, brakeAliases),
		Steering:    floatField(rec, steeringAliases),
		CurrentGear: intField(rec, gearAliases),
		RPM:         floatField(rec, rpmAliases),
		CurrentFuel: floatField(rec, fuelAliases),
		LapTime:     durationField(rec, lapTimeAliases),
		TimeOnTrack: durationField(rec, elapsedAliases),
		TyreTempFL:  floatField(rec, []string{"tyre_temp_fl", "tire_temp_fl"}),
		TyreTempFR:  floatField(rec, []string{"tyre_temp_fr", "tire_temp_fr"}),
		TyreTempRL:  floatField(rec, []string{"tyre_temp_rl", "tire_temp_rl"}),
		TyreTempRR:  floatField(rec, []string{"tyre_temp_rr", "tire_temp_rr"}),
		SuspFL:      floatField(rec, []string{"susp_fl", "suspension_fl"}),
		SuspFR:      floatField(rec, []string{"susp_fr", "suspension_fr"}),
		SuspRL:      floatField(rec, []string{"susp_rl", "suspension_rl"}),
		SuspRR:      floatField(rec, []string{"susp_rr", "suspension_rr"}),
	}
}

// stringField returns the first alias present as a string, or "".
func stringField(rec map[string]any, aliases []string) string {
	for _, alias := range aliases {
		v, ok := rec[alias]
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			return s
		case float64:
			// Some exporters write numeric IDs; keep them as codes.
			if s == math.Trunc(s) {
				return fmt.Sprintf("%d", int64(s))
			}
			return fmt.Sprintf("%g", s)
		}
	}
	return ""
}

// floatField returns the first alias present as a float64, or 0.
func floatField(rec map[string]any, aliases []string) float64 {
	for _, alias := range aliases {
		if v, ok := rec[alias].(float64); ok {
			return v
		}
	}
	return 0
}

// intField returns the first alias present truncated to int, or 0.
func intField(rec map[string]any, aliases []string) int {
	return int(floatField(rec, aliases))
}

// durationField decodes a lap-time-like value. Values above 1000 are taken as
// milliseconds, anything smaller as seconds; real lap and elapsed times never
// sit in the ambiguous band in practice.
func durationField(rec map[string]any, aliases []string) time.Duration {
	v := floatField(rec, aliases)
	if v == 0 {
		return 0
	}
	if v > 1000 {
		return time.Duration(v * float64(time.Millisecond))
	}
	return time.Duration(v * float64(time.Second))
}

// normalizePedals rescales throttle and brake to the 0-100 range when the
// whole session reports them in the unit interval. The check is per session,
// not per sample, so a held 100% throttle in 0-1 units still converts.
func normalizePedals(samples []Sample) {
	maxPedal := 0.0
	for _, s := range samples {
		if s.Throttle > maxPedal {
			maxPedal = s.Throttle
		}
		if s.Brake > maxPedal {
			maxPedal = s.Brake
		}
	}
	if maxPedal == 0 || maxPedal > 1 {
		return
	}
	for i := range samples {
		samples[i].Throttle *= 100
		samples[i].Brake *= 100
	}
}
