package refdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewCatalogFromLocalFiles(t *testing.T) {
	dir := t.TempDir()
	carsPath := writeCSV(t, dir, "cars.csv", "ID,ShortName,Maker\ngr3-rc,GT-R Gr.3,Nissan\n")
	tracksPath := writeCSV(t, dir, "course.csv", "ID,Name\nspa,Spa-Francorchamps\n")

	catalog, err := NewCatalog(context.Background(), carsPath, tracksPath, testLogger())
	require.NoError(t, err)

	assert.Equal(t, "GT-R Gr.3", catalog.Cars.Lookup("gr3-rc").DisplayName)
	assert.Equal(t, "Spa-Francorchamps", catalog.Tracks.Lookup("spa").DisplayName)
}

func TestNewCatalogFromRemoteSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cars.csv":
			_, _ = w.Write([]byte("ID,ShortName\nx,Remote Car\n"))
		case "/course.csv":
			_, _ = w.Write([]byte("ID,Name\ny,Remote Track\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	catalog, err := NewCatalog(context.Background(), srv.URL+"/cars.csv", srv.URL+"/course.csv", testLogger())
	require.NoError(t, err)

	assert.Equal(t, "Remote Car", catalog.Cars.Lookup("x").DisplayName)
	assert.Equal(t, "Remote Track", catalog.Tracks.Lookup("y").DisplayName)
}

func TestNewCatalogMissingSource(t *testing.T) {
	dir := t.TempDir()
	tracksPath := writeCSV(t, dir, "course.csv", "ID,Name\nspa,Spa-Francorchamps\n")

	_, err := NewCatalog(context.Background(), filepath.Join(dir, "nope.csv"), tracksPath, testLogger())
	assert.Error(t, err)
}

func TestReloadSwapsTables(t *testing.T) {
	dir := t.TempDir()
	carsPath := writeCSV(t, dir, "cars.csv", "ID,ShortName\na,First\n")
	tracksPath := writeCSV(t, dir, "course.csv", "ID,Name\nspa,Spa-Francorchamps\n")

	catalog, err := NewCatalog(context.Background(), carsPath, tracksPath, testLogger())
	require.NoError(t, err)
	require.Equal(t, 1, catalog.Cars.Len())

	writeCSV(t, dir, "cars.csv", "ID,ShortName\na,First\nb,Second\n")
	require.NoError(t, catalog.Reload(context.Background()))
	assert.Equal(t, 2, catalog.Cars.Len())
	assert.Equal(t, "Second", catalog.Cars.Lookup("b").DisplayName)
}

func TestReloadKeepsOldTablesOnFailure(t *testing.T) {
	dir := t.TempDir()
	carsPath := writeCSV(t, dir, "cars.csv", "ID,ShortName\na,First\n")
	tracksPath := writeCSV(t, dir, "course.csv", "ID,Name\nspa,Spa-Francorchamps\n")

	catalog, err := NewCatalog(context.Background(), carsPath, tracksPath, testLogger())
	require.NoError(t, err)

	require.NoError(t, os.Remove(carsPath))
	assert.Error(t, catalog.Reload(context.Background()))

	// Previous data still served
	assert.Equal(t, "First", catalog.Cars.Lookup("a").DisplayName)
}
