package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerSchedulerRunsImmediatelyAndOnTicks(t *testing.T) {
	s := NewTickerScheduler(10 * time.Millisecond)

	var runs atomic.Int32
	require.NoError(t, s.Start(context.Background(), func(time.Time) { runs.Add(1) }))

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop")
}

func TestTickerSchedulerStopWithoutStart(t *testing.T) {
	s := NewTickerScheduler(0)
	assert.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, 24*time.Hour, s.interval)
}

func TestTickerSchedulerStartTwice(t *testing.T) {
	s := NewTickerScheduler(time.Hour)

	var runs atomic.Int32
	job := func(time.Time) { runs.Add(1) }
	require.NoError(t, s.Start(context.Background(), job))
	require.NoError(t, s.Start(context.Background(), job))

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
	assert.EqualValues(t, 1, runs.Load())
}
