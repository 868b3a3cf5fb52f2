package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gt7-dashboard/internal/refdata"
	"github.com/yourusername/gt7-dashboard/internal/service"
	"github.com/yourusername/gt7-dashboard/internal/store"
)

type fakeStore struct {
	keys     []string
	payloads map[string][]byte
}

func (f *fakeStore) Name() string { return "fake" }

func (f *fakeStore) List(ctx context.Context, prefix string) ([]string, error) {
	return f.keys, nil
}

func (f *fakeStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.payloads[key]
	if !ok {
		return nil, store.NewStoreError(f.Name(), "fetch", key, store.ErrCodeNotFound, "no such telemetry file", store.ErrNotFound)
	}
	return data, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cars, err := refdata.Parse("car", strings.NewReader("ID,ShortName,Maker\ngr3-rc,GT-R Gr.3,Nissan\n"))
	require.NoError(t, err)
	tracks, err := refdata.Parse("track", strings.NewReader("ID,Name,Length\nspa,Spa-Francorchamps,7004\n"))
	require.NoError(t, err)

	st := &fakeStore{
		keys: []string{"nocode.json", "run1.json"},
		payloads: map[string][]byte{
			"run1.json": []byte(`[
				{"car_code": "gr3-rc", "track_code": "spa", "lap_index": 1, "distance": 0, "car_speed": 180, "throttle": 90, "brake": 0, "last_lap_time": 98.2},
				{"car_code": "gr3-rc", "track_code": "spa", "lap_index": 1, "distance": 50, "car_speed": 210, "throttle": 100, "brake": 0, "last_lap_time": 98.2}
			]`),
			"nocode.json": []byte(`[{"speed": 120, "lap_index": 0}]`),
		},
	}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	catalog := &refdata.Catalog{Cars: cars, Tracks: tracks}
	viewer := service.NewViewer(st, catalog, logger)

	return NewServer(Config{Addr: ":0", Viewer: viewer, Logger: logger})
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexListsSessions(t *testing.T) {
	rec := get(t, newTestServer(t), "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "run1.json")
	assert.Contains(t, rec.Body.String(), "nocode.json")
}

func TestSessionDetail(t *testing.T) {
	rec := get(t, newTestServer(t), "/session?key=run1.json")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "GT-R Gr.3")
	assert.Contains(t, body, "Spa-Francorchamps")
	assert.Contains(t, body, "1:38.200")
}

func TestSessionDetailUnknownCodesFallBackToRawCode(t *testing.T) {
	rec := get(t, newTestServer(t), "/session?key=nocode.json")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown car code: ")
	assert.Contains(t, rec.Body.String(), "Unknown track code: ")
}

func TestSessionDetailMissingFile(t *testing.T) {
	rec := get(t, newTestServer(t), "/session?key=ghost.json")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data available")
}

func TestSessionDetailEmptySelection(t *testing.T) {
	rec := get(t, newTestServer(t), "/session")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No session selected")
}

func TestLeaderboardPage(t *testing.T) {
	rec := get(t, newTestServer(t), "/leaderboard")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "run1.json")
	// nocode.json has no valid lap time, it must not appear as a ranked row
	assert.NotContains(t, body, `/session?key=nocode.json`)
}

func TestLeaderboardShowsAggregates(t *testing.T) {
	rec := get(t, newTestServer(t), "/leaderboard")

	assert.Equal(t, http.StatusOK, rec.Code)
	// run1.json is the only ranked session, so min and mean coincide.
	assert.Contains(t, rec.Body.String(), "1 ranked sessions, fastest 1:38.200, mean 1:38.200")
}

func TestCompareRejectsFifthSession(t *testing.T) {
	keys := url.QueryEscape("a.json,b.json,c.json,d.json,e.json")
	rec := get(t, newTestServer(t), "/compare?keys="+keys)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "At most 4 sessions")
}

func TestCompareEmptySelection(t *testing.T) {
	rec := get(t, newTestServer(t), "/compare")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No sessions selected")
}

func TestCompareSeparatorsOnlySelection(t *testing.T) {
	rec := get(t, newTestServer(t), "/compare?keys=,%20,")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No sessions selected")
}

func TestCompareRendersChart(t *testing.T) {
	rec := get(t, newTestServer(t), "/compare?keys=run1.json")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echarts")
}

func TestSpeedChart(t *testing.T) {
	rec := get(t, newTestServer(t), "/charts/speed?key=run1.json")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echarts")
}

func TestSpeedChartCurrentLap(t *testing.T) {
	rec := get(t, newTestServer(t), "/charts/speed?key=run1.json&lap=current")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echarts")
}

func TestSpeedChartLapFilter(t *testing.T) {
	rec := get(t, newTestServer(t), "/charts/speed?key=run1.json&lap=7")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data available for lap 7")
}

func TestChartMalformedSession(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/charts/line?key=run1.json")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, s, "/charts/inputs?key=run1.json")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReferencePreviews(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/reference/cars")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nissan")

	rec = get(t, s, "/reference/tracks")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "7004")
}
