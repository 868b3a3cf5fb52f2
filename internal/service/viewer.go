// Package service orchestrates the fetch -> decode -> aggregate pipeline
// behind the dashboard views.
package service

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gt7-dashboard/internal/analysis"
	"github.com/yourusername/gt7-dashboard/internal/metrics"
	"github.com/yourusername/gt7-dashboard/internal/refdata"
	"github.com/yourusername/gt7-dashboard/internal/store"
	"github.com/yourusername/gt7-dashboard/internal/telemetry"
)

// LeaderboardEntry is one ranking row: a session keyed by its best valid lap.
type LeaderboardEntry struct {
	SessionKey string        `json:"session_key"`
	CarName    string        `json:"car_name"`
	TrackName  string        `json:"track_name"`
	BestLap    time.Duration `json:"best_lap"`
}

// Viewer serves decoded sessions and derived aggregates to the presentation
// layer. Every view recomputes its inputs from the store; the store wrapper
// decides what is memoized.
type Viewer struct {
	store   store.Store
	catalog *refdata.Catalog
	logger  *logrus.Logger
}

// NewViewer creates a viewer service.
func NewViewer(st store.Store, catalog *refdata.Catalog, logger *logrus.Logger) *Viewer {
	return &Viewer{
		store:   st,
		catalog: catalog,
		logger:  logger,
	}
}

// Catalog exposes the reference tables for the preview pages.
func (v *Viewer) Catalog() *refdata.Catalog {
	return v.catalog
}

// ListSessions returns the telemetry file keys currently in the store.
func (v *Viewer) ListSessions(ctx context.Context, prefix string) ([]string, error) {
	return v.store.List(ctx, prefix)
}

// LoadSession fetches and decodes one session.
func (v *Viewer) LoadSession(ctx context.Context, key string) (*telemetry.Session, error) {
	raw, err := v.store.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	session, err := telemetry.Decode(key, raw)
	if err != nil {
		metrics.DecodeFailuresTotal.Inc()
		return nil, err
	}
	return session, nil
}

// Leaderboard ranks all sessions under prefix by best valid lap time,
// ascending, alongside min/mean aggregates over the valid best laps. A
// malformed or missing file is logged and skipped so one bad session never
// blanks the whole leaderboard.
func (v *Viewer) Leaderboard(ctx context.Context, prefix string) ([]LeaderboardEntry, analysis.Aggregate, error) {
	keys, err := v.store.List(ctx, prefix)
	if err != nil {
		return nil, analysis.Aggregate{}, err
	}

	entries := make([]LeaderboardEntry, 0, len(keys))
	sessions := make([]*telemetry.Session, 0, len(keys))
	for _, key := range keys {
		session, err := v.LoadSession(ctx, key)
		if err != nil {
			v.logger.WithError(err).WithField("key", key).Warn("Skipping session for leaderboard")
			continue
		}
		sessions = append(sessions, session)

		best, ok := analysis.BestLap(session)
		if !ok {
			continue
		}

		entries = append(entries, LeaderboardEntry{
			SessionKey: key,
			CarName:    v.catalog.Cars.Lookup(session.CarCode).Label("car"),
			TrackName:  v.catalog.Tracks.Lookup(session.TrackCode).Label("track"),
			BestLap:    best,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].BestLap < entries[j].BestLap
	})
	return entries, analysis.AggregateBestLaps(sessions), nil
}

// CompareSessions loads the selected sessions and builds distance-aligned
// overlays. The selection bound is enforced before any fetch.
func (v *Viewer) CompareSessions(ctx context.Context, keys []string) ([]analysis.Overlay, error) {
	if len(keys) > analysis.MaxCompareSessions {
		return nil, analysis.ErrTooManySessions
	}

	sessions := make([]*telemetry.Session, 0, len(keys))
	for _, key := range keys {
		session, err := v.LoadSession(ctx, key)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return analysis.Compare(sessions, v.catalog)
}

// ReloadReference re-reads the reference tables, used by the scheduler and
// the manual reload endpoint.
func (v *Viewer) ReloadReference(ctx context.Context) error {
	if err := v.catalog.Reload(ctx); err != nil {
		return err
	}
	metrics.ReferenceReloadsTotal.Inc()
	return nil
}
