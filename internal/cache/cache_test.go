package cache

import (
	"testing"
	"time"

	"proxypool/internal/config"
)

func TestNew_MemoryBackend(t *testing.T) {
	c, err := New(&Options{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New(memory) returned %T, want *MemoryCache", c)
	}
}

func TestNew_NilOptionsDefaultsToMemory(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New(nil) returned %T, want *MemoryCache", c)
	}
}

func TestNew_UnknownBackendFallsBackToMemory(t *testing.T) {
	c, err := New(&Options{Backend: "bogus"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New(bogus) returned %T, want *MemoryCache", c)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.CacheConfig{
		Driver: "redis", Host: "cache-host", Port: 6380,
		Password: "secret", DB: 2, DefaultTTL: 30 * time.Minute,
	}

	opts := FromConfig(cfg)
	if opts.Backend != "redis" {
		t.Errorf("Backend = %q, want redis", opts.Backend)
	}
	if opts.RedisAddr != "cache-host:6380" {
		t.Errorf("RedisAddr = %q, want cache-host:6380", opts.RedisAddr)
	}
	if opts.RedisPassword != "secret" {
		t.Errorf("RedisPassword = %q, want secret", opts.RedisPassword)
	}
	if opts.RedisDB != 2 {
		t.Errorf("RedisDB = %d, want 2", opts.RedisDB)
	}
	if opts.DefaultTTL != 30*time.Minute {
		t.Errorf("DefaultTTL = %v, want 30m", opts.DefaultTTL)
	}
}
