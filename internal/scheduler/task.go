package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"proxypool/internal/cache"
	"proxypool/internal/logger"
	"proxypool/internal/metrics"
	"proxypool/internal/telemetry"
)

// Func is the work a scheduled task performs on each firing.
type Func func(ctx context.Context) error

// Task runs Func on a drift-free fixed interval, skipping a firing if the
// previous one is still in flight, and persists its bookkeeping to the
// coordination cache after every run.
type Task struct {
	Name     string
	Interval time.Duration
	Fn       Func
	// Shared reports whether this task runs once across the whole worker
	// pool (leader-elected) or once per worker process. Carried as a span
	// attribute only; it has no effect on execution.
	Shared bool

	coordinator *cache.Coordinator
	stateTTL    time.Duration

	running atomic.Bool

	lastRun        *time.Time
	nextRun        time.Time
	executionCount int
	failureCount   int
}

// NewTask constructs a Task. coordinator may be nil to disable cross-process
// state persistence (useful in tests and single-process deployments).
func NewTask(name string, interval time.Duration, fn Func, coordinator *cache.Coordinator, stateTTL time.Duration) *Task {
	return &Task{Name: name, Interval: interval, Fn: fn, coordinator: coordinator, stateTTL: stateTTL}
}

// restore loads persisted state from the coordination cache, if any, so a
// restarted worker resumes the same schedule instead of drifting.
func (t *Task) restore(ctx context.Context) {
	if t.coordinator == nil {
		return
	}
	state, ok, err := t.coordinator.LoadTaskState(ctx, t.Name)
	if err != nil {
		logger.Log.Warn("failed to restore task state", "task", t.Name, "error", err)
		return
	}
	if !ok {
		return
	}
	t.lastRun = state.LastRun
	t.nextRun = state.NextRun
	t.executionCount = state.ExecutionCount
	t.failureCount = state.FailureCount
}

// run executes Fn once, guarded against overlap, and advances nextRun by
// exactly one interval from the previous nextRun (or from the start time on
// the very first run) so periodic firings never accumulate drift.
func (t *Task) run(ctx context.Context) {
	if !t.running.CompareAndSwap(false, true) {
		logger.Log.Warn("previous execution still running, skipping", "task", t.Name)
		metrics.Get().RecordTaskSkipped(t.Name)
		return
	}
	defer t.running.Store(false)

	ctx, span := telemetry.StartTaskSpan(ctx, t.Name, t.Shared, t.executionCount, t.failureCount)
	defer span.End()

	start := time.Now()
	err := t.Fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		t.failureCount++
		logger.Log.Error("task failed", "task", t.Name, "duration", elapsed, "error", err)
	} else {
		t.lastRun = &start
		t.executionCount++
		logger.Log.Info("task completed", "task", t.Name, "duration", elapsed,
			"executions", t.executionCount, "failures", t.failureCount)
	}
	metrics.Get().RecordTask(t.Name, err == nil, elapsed)

	if !t.nextRun.IsZero() {
		t.nextRun = t.nextRun.Add(t.Interval)
	} else {
		t.nextRun = start.Add(t.Interval)
	}

	t.persist(ctx, elapsed)
}

func (t *Task) persist(ctx context.Context, executionTime time.Duration) {
	if t.coordinator == nil {
		return
	}
	state := cache.TaskState{
		LastRun:        t.lastRun,
		NextRun:        t.nextRun,
		ExecutionCount: t.executionCount,
		FailureCount:   t.failureCount,
		ExecutionTime:  executionTime,
	}
	if err := t.coordinator.SaveTaskState(ctx, t.Name, state, t.stateTTL); err != nil {
		logger.Log.Warn("failed to persist task state", "task", t.Name, "error", err)
	}
}

// loop runs the task forever, firing immediately on startup (unless a
// restored nextRun is in the future) and then at each computed nextRun,
// until ctx is cancelled.
func (t *Task) loop(ctx context.Context) {
	t.restore(ctx)

	for {
		if !t.nextRun.IsZero() {
			wait := time.Until(t.nextRun)
			if wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		t.run(ctx)
	}
}

// Status is the externally-visible snapshot served by GET /api/tasks.
type Status struct {
	Name           string     `json:"name"`
	Interval       string     `json:"interval"`
	LastRun        *time.Time `json:"last_run,omitempty"`
	NextRun        *time.Time `json:"next_run,omitempty"`
	IsRunning      bool       `json:"is_running"`
	ExecutionCount int        `json:"execution_count"`
	FailureCount   int        `json:"failure_count"`
}

func (t *Task) status() Status {
	var nextRun *time.Time
	if !t.nextRun.IsZero() {
		nr := t.nextRun
		nextRun = &nr
	}
	return Status{
		Name:           t.Name,
		Interval:       t.Interval.String(),
		LastRun:        t.lastRun,
		NextRun:        nextRun,
		IsRunning:      t.running.Load(),
		ExecutionCount: t.executionCount,
		FailureCount:   t.failureCount,
	}
}
