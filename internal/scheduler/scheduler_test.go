package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gt7-dashboard/internal/service"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestEmptyScheduleDisablesScheduler(t *testing.T) {
	s := NewScheduler(&service.Viewer{}, testLogger())

	require.NoError(t, s.Start(""))
	assert.False(t, s.IsRunning())
}

func TestInvalidScheduleRejected(t *testing.T) {
	s := NewScheduler(&service.Viewer{}, testLogger())

	assert.Error(t, s.Start("not a cron spec"))
	assert.False(t, s.IsRunning())
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(&service.Viewer{}, testLogger())

	require.NoError(t, s.Start("0 * * * *"))
	assert.True(t, s.IsRunning())

	// Double start is an error
	assert.Error(t, s.Start("0 * * * *"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())

	// Stopping twice is a no-op
	require.NoError(t, s.Stop(ctx))
}
