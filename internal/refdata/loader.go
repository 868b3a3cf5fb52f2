package refdata

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Catalog holds the two reference tables the dashboard needs. Tables live for
// the process lifetime or until an explicit Reload.
type Catalog struct {
	Cars   *Table
	Tracks *Table

	carsSource   string
	tracksSource string
	client       *RetryingHTTPClient
	logger       *logrus.Logger
}

// NewCatalog loads both reference tables from their sources. A source is a
// local file path or an HTTP(S) URL to a CSV mirror.
func NewCatalog(ctx context.Context, carsSource, tracksSource string, logger *logrus.Logger) (*Catalog, error) {
	c := &Catalog{
		carsSource:   carsSource,
		tracksSource: tracksSource,
		client:       NewRetryingHTTPClient(DefaultHTTPClientConfig()),
		logger:       logger,
	}

	cars, err := c.load(ctx, "car", carsSource)
	if err != nil {
		return nil, err
	}
	tracks, err := c.load(ctx, "track", tracksSource)
	if err != nil {
		return nil, err
	}

	c.Cars = cars
	c.Tracks = tracks

	logger.WithFields(logrus.Fields{
		"cars":   cars.Len(),
		"tracks": tracks.Len(),
	}).Info("Reference tables loaded")

	return c, nil
}

// Reload re-reads both tables from their sources. A failed reload leaves the
// previous tables in place so the dashboard never loses its reference data.
func (c *Catalog) Reload(ctx context.Context) error {
	cars, err := c.load(ctx, "car", c.carsSource)
	if err != nil {
		return fmt.Errorf("failed to reload car table: %w", err)
	}
	tracks, err := c.load(ctx, "track", c.tracksSource)
	if err != nil {
		return fmt.Errorf("failed to reload track table: %w", err)
	}

	c.Cars.replace(cars)
	c.Tracks.replace(tracks)

	c.logger.WithFields(logrus.Fields{
		"cars":   c.Cars.Len(),
		"tracks": c.Tracks.Len(),
	}).Info("Reference tables reloaded")

	return nil
}

func (c *Catalog) load(ctx context.Context, kind, source string) (*Table, error) {
	var data []byte
	var err error

	if isRemote(source) {
		data, err = c.client.Get(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("failed to download %s table from %s: %w", kind, source, err)
		}
	} else {
		data, err = os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s table at %s: %w", kind, source, err)
		}
	}

	return Parse(kind, bytes.NewReader(data))
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
