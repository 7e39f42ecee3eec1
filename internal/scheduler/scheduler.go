package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"proxypool/internal/cache"
	"proxypool/internal/config"
	"proxypool/internal/logger"
)

const leaderLockKey = "scheduler:task_initialization"

// SharedTasks names the four tasks that run once across the whole pool of
// worker processes rather than once per worker.
type SharedTasks struct {
	Crawl              Func
	Cleanup            Func
	CountryUpdate      Func
	ValidateSuccessful Func
}

// Scheduler runs one goroutine per registered task. Leadership for the
// shared tasks is decided once, at Start, via a SETNX-style distributed
// lock so exactly one worker process in the pool runs them.
type Scheduler struct {
	coordinator *cache.Coordinator
	cfg         config.SchedulerConfig
	instanceID  string

	tasks  []*Task
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Scheduler. coordinator may be nil, in which case every
// worker behaves as leader (useful for single-process deployments and
// tests). instanceID, a fresh UUID per process, is the value written to
// the leader lock so operators can tell which instance holds it from the
// Redis key alone.
func New(coordinator *cache.Coordinator, cfg config.SchedulerConfig) *Scheduler {
	return &Scheduler{coordinator: coordinator, cfg: cfg, instanceID: uuid.NewString()}
}

// Start decides leadership, builds the task set, and launches one loop
// goroutine per task. It returns as soon as the goroutines are launched,
// without waiting for any task to fire; the loops keep running until Stop.
func (s *Scheduler) Start(ctx context.Context, crawlInterval time.Duration, shared SharedTasks, pendingValidate Func) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	leader := true
	if s.coordinator != nil {
		var err error
		leader, err = s.coordinator.SetIfAbsent(runCtx, leaderLockKey, s.instanceID, s.cfg.LeaderLockTTL)
		if err != nil {
			// The coordination cache is an advisory lock, not a source of
			// truth: when we can't tell who's leader, every worker assumes
			// leadership rather than none. Duplicated shared-task execution
			// is safe (idempotent upserts, conflict-free deletes); silently
			// running zero crawls/cleanups/revalidations fleet-wide is not.
			logger.Log.Warn("leader election failed, assuming leader role", "error", err)
			leader = true
		}
	}

	if leader {
		logger.Log.Info("elected leader, registering shared tasks", "instance_id", s.instanceID)
		s.addSharedTask("Proxy Crawl", crawlInterval, shared.Crawl)
		s.addSharedTask("Proxy Cleanup", s.cfg.CleanupInterval, shared.Cleanup)
		s.addSharedTask("Country Update", s.cfg.UpdateCountryInterval, shared.CountryUpdate)
		s.addSharedTask("Success Proxy Validation", s.cfg.ValidateSuccessInterval, shared.ValidateSuccessful)
	} else {
		logger.Log.Info("not leader, skipping shared task registration")
	}

	// Every worker, leader or not, runs its own pending-validation task.
	s.addTask("Pending Proxy Validation", s.cfg.ValidateInterval, pendingValidate)

	for _, t := range s.tasks {
		s.wg.Add(1)
		go func(t *Task) {
			defer s.wg.Done()
			t.loop(runCtx)
		}(t)
	}
}

func (s *Scheduler) addTask(name string, interval time.Duration, fn Func) {
	if fn == nil {
		return
	}
	s.tasks = append(s.tasks, NewTask(name, interval, fn, s.coordinator, s.cfg.TaskStateTTL))
}

func (s *Scheduler) addSharedTask(name string, interval time.Duration, fn Func) {
	if fn == nil {
		return
	}
	t := NewTask(name, interval, fn, s.coordinator, s.cfg.TaskStateTTL)
	t.Shared = true
	s.tasks = append(s.tasks, t)
}

// Stop cancels every task loop and waits for them to exit.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Status returns a point-in-time snapshot of every registered task, serving
// GET /api/tasks.
func (s *Scheduler) Status() []Status {
	out := make([]Status, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.status())
	}
	return out
}
