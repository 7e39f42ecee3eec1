package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func skipIfNoRedis(t *testing.T) {
	if os.Getenv("REDIS_TEST_ADDR") == "" {
		t.Skip("REDIS_TEST_ADDR not set, skipping Redis tests")
	}
}

func TestNewRedisCache(t *testing.T) {
	skipIfNoRedis(t)

	c, err := NewRedisCache(&Options{
		RedisAddr:     os.Getenv("REDIS_TEST_ADDR"),
		RedisPassword: os.Getenv("REDIS_TEST_PASSWORD"),
		DefaultTTL:    time.Minute,
	})
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "proxypool-test-key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := c.Get(ctx, "proxypool-test-key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get() = %s, want value", got)
	}

	c.Delete(ctx, "proxypool-test-key")
}

func TestRedisCache_NotFound(t *testing.T) {
	skipIfNoRedis(t)

	c, err := NewRedisCache(&Options{RedisAddr: os.Getenv("REDIS_TEST_ADDR")})
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	defer c.Close()

	if _, err := c.Get(context.Background(), "proxypool-test-missing"); err != ErrKeyNotFound {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}
}

func TestRedisCache_MGetMSetMDelete(t *testing.T) {
	skipIfNoRedis(t)

	c, err := NewRedisCache(&Options{RedisAddr: os.Getenv("REDIS_TEST_ADDR")})
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	entries := map[string][]byte{"proxypool-test-a": []byte("1"), "proxypool-test-b": []byte("2")}
	if err := c.MSet(ctx, entries, time.Minute); err != nil {
		t.Fatalf("MSet() error = %v", err)
	}

	got, err := c.MGet(ctx, []string{"proxypool-test-a", "proxypool-test-b"})
	if err != nil {
		t.Fatalf("MGet() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("MGet() = %v, want 2 entries", got)
	}

	n, err := c.MDelete(ctx, []string{"proxypool-test-a", "proxypool-test-b"})
	if err != nil {
		t.Fatalf("MDelete() error = %v", err)
	}
	if n != 2 {
		t.Errorf("MDelete() = %d, want 2", n)
	}
}

func TestNewRedisCache_PingFails(t *testing.T) {
	_, err := NewRedisCache(&Options{RedisAddr: "127.0.0.1:1"})
	if err == nil {
		t.Error("NewRedisCache() error = nil, want error for unreachable address")
	}
}
