package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestInit(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error", "unknown"}
	for _, level := range levels {
		Init(level)
		if Log == nil {
			t.Errorf("Init(%s) should set Log", level)
		}
	}
}

func TestInitWithConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name:   "json format stdout",
			config: Config{Level: "info", Format: "json", Output: "stdout"},
		},
		{
			name:   "text format stderr",
			config: Config{Level: "debug", Format: "text", Output: "stderr"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitWithConfig(tt.config)
			if Log == nil {
				t.Error("Log should not be nil")
			}
		})
	}
}

func TestInitWithConfig_FileOutput(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "proxypool.log")

	InitWithConfig(Config{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logPath,
	})

	if Log == nil {
		t.Fatal("Log should not be nil")
	}

	Log.Info("test message")
}

func TestInitWithConfig_FileOutputInvalidDir(t *testing.T) {
	InitWithConfig(Config{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: "/nonexistent/deeply/nested/dir/proxypool.log",
	})

	if Log == nil {
		t.Error("Log should not be nil even with an invalid path")
	}
}

func TestLoggingFunctions(t *testing.T) {
	Init("debug")

	Debug("crawl started", "adapter", "github-vakhov")
	Info("crawl finished", "found", 42)
	Warn("validation batch degraded", "failed", 3)
	Error("store unavailable", "error", "connection refused")
}

func TestWithContext(t *testing.T) {
	Init("info")

	l := WithContext(context.Background(), "key1", "value1")
	if l == nil {
		t.Error("WithContext should return a logger")
	}
}

func TestWithTask(t *testing.T) {
	Init("info")

	l := WithTask("crawl")
	if l == nil {
		t.Error("WithTask should return a logger")
	}
}

func TestWithAdapter(t *testing.T) {
	Init("info")

	l := WithAdapter("free-proxy-list")
	if l == nil {
		t.Error("WithAdapter should return a logger")
	}
}

func TestFatal(t *testing.T) {
	if os.Getenv("TEST_FATAL") == "1" {
		Init("info")
		Fatal("fatal message")
		return
	}
	// Fatal calls os.Exit; exercising it directly would kill the test binary.
}
