package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResolvesAliases(t *testing.T) {
	raw := []byte(`[
		{"car_id": "gr3-rc", "track": "spa", "current_lap": 1, "speed": 212.4, "distance": 10.0},
		{"car_id": "gr3-rc", "track": "spa", "current_lap": 1, "speed": 215.1, "distance": 20.0}
	]`)

	session, err := Decode("sessions/run1.json", raw)
	require.NoError(t, err)

	assert.Equal(t, "gr3-rc", session.CarCode)
	assert.Equal(t, "spa", session.TrackCode)
	require.Len(t, session.Samples, 2)
	assert.Equal(t, 1, session.Samples[0].LapIndex)
	assert.Equal(t, 212.4, session.Samples[0].CarSpeed)
	assert.Equal(t, 20.0, session.Samples[1].Distance)
}

func TestDecodeAliasPriorityOrder(t *testing.T) {
	// car_code outranks car_id outranks car
	raw := []byte(`[{"car": "c", "car_id": "b", "car_code": "a", "lap_index": 0}]`)

	session, err := Decode("k.json", raw)
	require.NoError(t, err)
	assert.Equal(t, "a", session.CarCode)
}

func TestDecodeMissingAllAliasesYieldsEmptyCode(t *testing.T) {
	raw := []byte(`[{"speed": 120}]`)

	session, err := Decode("k.json", raw)
	require.NoError(t, err)

	assert.Equal(t, "", session.CarCode)
	assert.Equal(t, "", session.TrackCode)
	require.Len(t, session.Samples, 1)
	assert.Equal(t, 120.0, session.Samples[0].CarSpeed)
}

func TestDecodeNumericCarID(t *testing.T) {
	raw := []byte(`[{"car_id": 3298, "lap_index": 0}]`)

	session, err := Decode("k.json", raw)
	require.NoError(t, err)
	assert.Equal(t, "3298", session.CarCode)
}

func TestDecodeMalformedPayloads(t *testing.T) {
	cases := map[string][]byte{
		"not json":        []byte(`not json at all`),
		"object not list": []byte(`{"speed": 120}`),
		"empty array":     []byte(`[]`),
		"scalar elements": []byte(`[1, 2, 3]`),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode("k.json", raw)
			assert.ErrorIs(t, err, ErrMalformedSession)
		})
	}
}

func TestDecodeNormalizesUnitIntervalPedals(t *testing.T) {
	raw := []byte(`[
		{"lap_index": 0, "throttle": 1.0, "brake": 0.0},
		{"lap_index": 0, "throttle": 0.5, "brake": 0.25}
	]`)

	session, err := Decode("k.json", raw)
	require.NoError(t, err)

	assert.Equal(t, 100.0, session.Samples[0].Throttle)
	assert.Equal(t, 50.0, session.Samples[1].Throttle)
	assert.Equal(t, 25.0, session.Samples[1].Brake)
}

func TestDecodeKeepsPercentPedals(t *testing.T) {
	raw := []byte(`[{"lap_index": 0, "throttle": 87.5, "brake": 12.0}]`)

	session, err := Decode("k.json", raw)
	require.NoError(t, err)

	assert.Equal(t, 87.5, session.Samples[0].Throttle)
	assert.Equal(t, 12.0, session.Samples[0].Brake)
}

func TestDecodeLapTimeUnits(t *testing.T) {
	// 98200 reads as milliseconds, 97.5 as seconds
	raw := []byte(`[
		{"lap_index": 1, "last_lap_time": 98200},
		{"lap_index": 2, "last_lap_time": 97.5}
	]`)

	session, err := Decode("k.json", raw)
	require.NoError(t, err)

	assert.Equal(t, 98200*time.Millisecond, session.Samples[0].LapTime)
	assert.Equal(t, 97500*time.Millisecond, session.Samples[1].LapTime)
}
