package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"proxypool/internal/config"
)

func TestScheduler_NilCoordinatorActsAsLeader(t *testing.T) {
	var crawlCalls, pendingCalls atomic.Int32

	s := New(nil, config.SchedulerConfig{
		ValidateInterval:        20 * time.Millisecond,
		CleanupInterval:         20 * time.Millisecond,
		UpdateCountryInterval:   20 * time.Millisecond,
		ValidateSuccessInterval: 20 * time.Millisecond,
	})

	s.Start(context.Background(), 20*time.Millisecond, SharedTasks{
		Crawl: func(ctx context.Context) error { crawlCalls.Add(1); return nil },
	}, func(ctx context.Context) error { pendingCalls.Add(1); return nil })

	time.Sleep(80 * time.Millisecond)
	s.Stop()

	assert.Greater(t, crawlCalls.Load(), int32(0))
	assert.Greater(t, pendingCalls.Load(), int32(0))
	assert.Len(t, s.Status(), 2) // only Crawl + Pending Validation were given non-nil funcs
}

func TestScheduler_SharedFlagDistinguishesFleetWideTasks(t *testing.T) {
	s := New(nil, config.SchedulerConfig{
		ValidateInterval:        time.Hour,
		CleanupInterval:         time.Hour,
		UpdateCountryInterval:   time.Hour,
		ValidateSuccessInterval: time.Hour,
	})

	s.Start(context.Background(), time.Hour, SharedTasks{
		Crawl: func(ctx context.Context) error { return nil },
	}, func(ctx context.Context) error { return nil })
	defer s.Stop()

	var sawCrawl, sawPending bool
	for _, task := range s.tasks {
		switch task.Name {
		case "Proxy Crawl":
			sawCrawl = true
			assert.True(t, task.Shared, "leader-elected tasks should be marked Shared")
		case "Pending Proxy Validation":
			sawPending = true
			assert.False(t, task.Shared, "per-worker tasks should not be marked Shared")
		}
	}
	assert.True(t, sawCrawl)
	assert.True(t, sawPending)
}
