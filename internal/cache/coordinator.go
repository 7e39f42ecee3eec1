package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"proxypool/internal/config"
)

// TaskState is the scheduler's per-task bookkeeping persisted between
// restarts and shared across worker processes.
type TaskState struct {
	LastRun        *time.Time
	NextRun        time.Time
	ExecutionCount int
	FailureCount   int
	ExecutionTime  time.Duration
}

const taskStatsKeyFmt = "task:stats:%s"

// Coordinator exposes the Redis-backed primitives the scheduler needs for
// leader election and cross-process task-state sharing.
type Coordinator struct {
	client *redis.Client
}

// NewCoordinator dials Redis using the coordination-cache config.
func NewCoordinator(cfg config.CacheConfig) (*Coordinator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("coordinator: redis ping: %w", err)
	}

	return &Coordinator{client: client}, nil
}

// SetIfAbsent is the leader-election primitive: the first caller to set key
// within ttl becomes the leader for that window.
func (c *Coordinator) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, ttl).Result()
}

// SaveTaskState writes a task's bookkeeping hash and refreshes its TTL in one
// pipelined round trip, mirroring update_task_info_batch's hset+expire pair.
func (c *Coordinator) SaveTaskState(ctx context.Context, task string, state TaskState, ttl time.Duration) error {
	key := fmt.Sprintf(taskStatsKeyFmt, task)

	lastRun := ""
	if state.LastRun != nil {
		lastRun = state.LastRun.Format(time.RFC3339)
	}

	fields := map[string]any{
		"last_run":       lastRun,
		"next_run":       state.NextRun.Format(time.RFC3339),
		"execution_count": state.ExecutionCount,
		"failure_count":   state.FailureCount,
		"execution_time":  state.ExecutionTime.Seconds(),
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("coordinator: save task state for %s: %w", task, err)
	}
	return nil
}

// LoadTaskState returns the persisted state for task, or ok=false if the hash
// has expired or was never written (a fresh deploy, or first run ever).
func (c *Coordinator) LoadTaskState(ctx context.Context, task string) (state TaskState, ok bool, err error) {
	key := fmt.Sprintf(taskStatsKeyFmt, task)

	vals, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return TaskState{}, false, fmt.Errorf("coordinator: load task state for %s: %w", task, err)
	}
	if len(vals) == 0 {
		return TaskState{}, false, nil
	}

	if v := vals["last_run"]; v != "" {
		if t, perr := time.Parse(time.RFC3339, v); perr == nil {
			state.LastRun = &t
		}
	}
	if v := vals["next_run"]; v != "" {
		if t, perr := time.Parse(time.RFC3339, v); perr == nil {
			state.NextRun = t
		}
	}
	fmt.Sscanf(vals["execution_count"], "%d", &state.ExecutionCount)
	fmt.Sscanf(vals["failure_count"], "%d", &state.FailureCount)

	return state, true, nil
}

// Ping reports coordination-cache health. GET /api/health does not call it.
func (c *Coordinator) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Coordinator) Close() error {
	return c.client.Close()
}
