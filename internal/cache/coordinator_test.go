package cache

import (
	"context"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"proxypool/internal/config"
)

func testCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	skipIfNoRedis(t)

	host, portStr, err := net.SplitHostPort(os.Getenv("REDIS_TEST_ADDR"))
	if err != nil {
		t.Fatalf("invalid REDIS_TEST_ADDR: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("invalid REDIS_TEST_ADDR port: %v", err)
	}

	c, err := NewCoordinator(config.CacheConfig{
		Host:     host,
		Port:     port,
		Password: os.Getenv("REDIS_TEST_PASSWORD"),
	})
	if err != nil {
		t.Fatalf("NewCoordinator() error = %v", err)
	}
	return c
}

func TestCoordinator_SetIfAbsent(t *testing.T) {
	c := testCoordinator(t)
	defer c.Close()

	ctx := context.Background()
	key := "proxypool-test-leader"
	defer c.client.Del(ctx, key)

	first, err := c.SetIfAbsent(ctx, key, "worker-1", time.Minute)
	if err != nil {
		t.Fatalf("SetIfAbsent() error = %v", err)
	}
	if !first {
		t.Error("SetIfAbsent() first call = false, want true")
	}

	second, err := c.SetIfAbsent(ctx, key, "worker-2", time.Minute)
	if err != nil {
		t.Fatalf("SetIfAbsent() error = %v", err)
	}
	if second {
		t.Error("SetIfAbsent() second call = true, want false (already held)")
	}
}

func TestCoordinator_SaveAndLoadTaskState(t *testing.T) {
	c := testCoordinator(t)
	defer c.Close()

	ctx := context.Background()
	task := "proxypool-test-crawl"
	defer c.client.Del(ctx, "task:stats:"+task)

	now := time.Now().Truncate(time.Second)
	state := TaskState{LastRun: &now, NextRun: now.Add(time.Hour), ExecutionCount: 3, FailureCount: 1}

	if err := c.SaveTaskState(ctx, task, state, time.Minute); err != nil {
		t.Fatalf("SaveTaskState() error = %v", err)
	}

	loaded, ok, err := c.LoadTaskState(ctx, task)
	if err != nil {
		t.Fatalf("LoadTaskState() error = %v", err)
	}
	if !ok {
		t.Fatal("LoadTaskState() ok = false, want true")
	}
	if loaded.ExecutionCount != 3 || loaded.FailureCount != 1 {
		t.Errorf("LoadTaskState() = %+v, want ExecutionCount=3 FailureCount=1", loaded)
	}
}

func TestCoordinator_LoadTaskState_Missing(t *testing.T) {
	c := testCoordinator(t)
	defer c.Close()

	_, ok, err := c.LoadTaskState(context.Background(), "proxypool-test-never-run")
	if err != nil {
		t.Fatalf("LoadTaskState() error = %v", err)
	}
	if ok {
		t.Error("LoadTaskState() ok = true, want false for a task never run")
	}
}

func TestCoordinator_Ping(t *testing.T) {
	c := testCoordinator(t)
	defer c.Close()

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestNewCoordinator_PingFails(t *testing.T) {
	_, err := NewCoordinator(config.CacheConfig{Host: "127.0.0.1", Port: 1})
	if err == nil {
		t.Error("NewCoordinator() error = nil, want error for unreachable address")
	}
}
