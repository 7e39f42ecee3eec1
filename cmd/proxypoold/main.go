// Command proxypoold is the long-running worker process: it runs the
// scheduled crawl/validate/cleanup tasks and serves the read API until
// terminated.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"proxypool/internal/app"
	"proxypool/internal/config"
	"proxypool/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		logger.Fatal("worker stopped with error", "error", err)
	}
}
