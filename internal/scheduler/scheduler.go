// Package scheduler runs the periodic reference-table reload.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gt7-dashboard/internal/service"
)

// Scheduler manages the scheduled reference reload job
type Scheduler struct {
	cron      *cron.Cron
	viewer    *service.Viewer
	logger    *logrus.Logger
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a new scheduler
func NewScheduler(viewer *service.Viewer, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		viewer: viewer,
		logger: logger,
	}
}

// Start registers the reload job and starts the cron loop. An empty schedule
// disables scheduled reloads without error.
func (s *Scheduler) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler already running")
	}
	if schedule == "" {
		s.logger.Info("Reference reload schedule empty, scheduler disabled")
		return nil
	}

	id, err := s.cron.AddFunc(schedule, s.reloadReference)
	if err != nil {
		return fmt.Errorf("failed to register reload job: %w", err)
	}
	s.jobIDs = append(s.jobIDs, id)

	s.cron.Start()
	s.isRunning = true

	s.logger.WithField("schedule", schedule).Info("Reference reload scheduler started")
	return nil
}

// Stop stops the cron loop and waits for a running job to finish or the
// context to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop timed out: %w", ctx.Err())
	}

	s.isRunning = false
	s.logger.Info("Scheduler stopped")
	return nil
}

// IsRunning reports whether the cron loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Scheduler) reloadReference() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.viewer.ReloadReference(ctx); err != nil {
		s.logger.WithError(err).Error("Scheduled reference reload failed")
		return
	}
	s.logger.Debug("Scheduled reference reload completed")
}
