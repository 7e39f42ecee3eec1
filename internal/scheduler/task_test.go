package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_Run_AdvancesNextRunByInterval(t *testing.T) {
	task := NewTask("t", 100*time.Millisecond, func(ctx context.Context) error { return nil }, nil, 0)

	base := time.Now()
	task.nextRun = base

	task.run(context.Background())
	require.False(t, task.nextRun.IsZero())
	assert.WithinDuration(t, base.Add(100*time.Millisecond), task.nextRun, 5*time.Millisecond)
	assert.Equal(t, 1, task.executionCount)
	assert.Equal(t, 0, task.failureCount)
}

func TestTask_Run_FirstRunAnchorsOnStartTime(t *testing.T) {
	task := NewTask("t", 50*time.Millisecond, func(ctx context.Context) error { return nil }, nil, 0)

	before := time.Now()
	task.run(context.Background())
	after := time.Now()

	assert.True(t, task.nextRun.After(before))
	assert.True(t, task.nextRun.Before(after.Add(50*time.Millisecond+10*time.Millisecond)))
}

func TestTask_Run_SkipsWhenAlreadyRunning(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	task := NewTask("t", time.Second, func(ctx context.Context) error {
		calls.Add(1)
		close(started)
		<-release
		return nil
	}, nil, 0)

	go task.run(context.Background())
	<-started

	task.run(context.Background()) // should skip, previous still in flight
	close(release)

	assert.Equal(t, int32(1), calls.Load())
}

func TestTask_Run_FailureIncrementsFailureCount(t *testing.T) {
	task := NewTask("t", time.Second, func(ctx context.Context) error {
		return assert.AnError
	}, nil, 0)

	task.run(context.Background())
	assert.Equal(t, 1, task.failureCount)
	assert.Equal(t, 0, task.executionCount)
	assert.Nil(t, task.lastRun)
}
