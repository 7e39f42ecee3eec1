package crawl

import (
	"context"
	"sync"
	"time"

	"proxypool/internal/config"
	"proxypool/internal/logger"
	"proxypool/internal/metrics"
	"proxypool/internal/ratelimit"
	"proxypool/internal/store"
	"proxypool/internal/telemetry"
)

// AdapterResult is one adapter's contribution to a crawl run.
type AdapterResult struct {
	Adapter    string
	Candidates []store.Candidate
	Err        error
}

// Coordinator fans crawl runs out across every registered adapter, bounded
// by MaxConcurrentSpiders: a semaphore-style worker pool where one adapter's
// failure or timeout never cancels its siblings.
type Coordinator struct {
	cfg     config.CrawlConfig
	limiter ratelimit.Limiter
	now     func() time.Time
}

// NewCoordinator builds a Coordinator. limiter may be nil to disable
// per-source rate limiting.
func NewCoordinator(cfg config.CrawlConfig, limiter ratelimit.Limiter) *Coordinator {
	return &Coordinator{cfg: cfg, limiter: limiter, now: time.Now}
}

// RunAll runs every enabled adapter concurrently and returns one result per
// adapter, in no particular order.
func (c *Coordinator) RunAll(ctx context.Context) []AdapterResult {
	adapters := Registered()
	if len(adapters) == 0 {
		logger.Log.Warn("no crawl adapters registered")
		return nil
	}

	ctx, span := telemetry.StartSpan(ctx, "crawl.run_all")
	defer span.End()

	workers := c.cfg.MaxConcurrentSpiders
	if workers <= 0 {
		workers = 1
	}
	if workers > len(adapters) {
		workers = len(adapters)
	}

	tasks := make(chan Adapter, len(adapters))
	for _, a := range adapters {
		tasks <- a
	}
	close(tasks)

	resultsCh := make(chan AdapterResult, len(adapters))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range tasks {
				resultsCh <- c.runOne(ctx, a)
			}
		}()
	}

	wg.Wait()
	close(resultsCh)

	results := make([]AdapterResult, 0, len(adapters))
	for r := range resultsCh {
		results = append(results, r)
	}
	return results
}

func (c *Coordinator) runOne(ctx context.Context, a Adapter) AdapterResult {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, a.Name()); err != nil {
			return AdapterResult{Adapter: a.Name(), Err: err}
		}
		if info, err := c.limiter.GetInfo(ctx, a.Name()); err == nil && info.Remaining <= 1 {
			logger.Log.Debug("crawl adapter near its rate limit", "adapter", a.Name(),
				"remaining", info.Remaining, "limit", info.Limit, "reset_at", info.ResetAt)
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	start := c.now()
	candidates, err := a.FetchProxies(reqCtx)
	duration := c.now().Sub(start)

	metrics.Get().RecordCrawl(a.Name(), err == nil, len(candidates), duration)

	if err != nil {
		logger.Log.Warn("crawl adapter failed", "adapter", a.Name(), "error", err)
		return AdapterResult{Adapter: a.Name(), Err: err}
	}

	if len(candidates) == 0 {
		logger.Log.Warn("crawl adapter returned no candidates", "adapter", a.Name())
	} else {
		logger.Log.Info("crawl adapter completed", "adapter", a.Name(), "candidates", len(candidates))
	}

	return AdapterResult{Adapter: a.Name(), Candidates: candidates}
}
