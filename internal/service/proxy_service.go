package service

import (
	"context"
	"fmt"

	"proxypool/internal/config"
	"proxypool/internal/crawl"
	"proxypool/internal/logger"
	"proxypool/internal/store"
	"proxypool/internal/telemetry"
	"proxypool/internal/validator"
)

// ProxyService is the thin orchestration layer between the scheduler/API and
// the store: every method is a direct, mostly pass-through call into the
// crawl coordinator, validator, or repository.
type ProxyService struct {
	repo      store.Repository
	crawler   *crawl.Coordinator
	validator *validator.Validator
	cfg       config.Config
}

// New constructs a ProxyService wiring the store, the crawl coordinator, and
// the validator together.
func New(repo store.Repository, crawler *crawl.Coordinator, v *validator.Validator, cfg config.Config) *ProxyService {
	return &ProxyService{repo: repo, crawler: crawler, validator: v, cfg: cfg}
}

// Crawl runs every registered adapter and persists the discovered
// candidates as pending proxies.
func (s *ProxyService) Crawl(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "service.crawl")
	defer span.End()

	results := s.crawler.RunAll(ctx)

	var total int
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		n, err := s.repo.UpsertCandidates(ctx, r.Candidates)
		if err != nil {
			logger.Log.Error("failed to persist crawl candidates", "adapter", r.Adapter, "error", err)
			continue
		}
		total += n
	}

	logger.Log.Info("crawl cycle finished", "adapters", len(results), "candidates", total)
	return nil
}

// ValidatePending re-checks PENDING/FAILED proxies under the failure
// ceiling, corresponding to validate_pending_task.
func (s *ProxyService) ValidatePending(ctx context.Context) error {
	return s.validateAndRecord(ctx, "Pending Proxy Validation", func() ([]store.Proxy, error) {
		return s.repo.IterPending(ctx, s.cfg.Validator.BatchLimit, s.cfg.Scheduler.MaxFailCount)
	})
}

// ValidateSuccessful re-checks already-working proxies, corresponding to
// validate_success_task.
func (s *ProxyService) ValidateSuccessful(ctx context.Context) error {
	return s.validateAndRecord(ctx, "Success Proxy Validation", func() ([]store.Proxy, error) {
		return s.repo.IterSuccessful(ctx, s.cfg.Validator.BatchLimit)
	})
}

func (s *ProxyService) validateAndRecord(ctx context.Context, taskName string, fetch func() ([]store.Proxy, error)) error {
	proxies, err := fetch()
	if err != nil {
		return fmt.Errorf("%s: fetch candidates: %w", taskName, err)
	}

	batch := s.validator.ValidateBatch(ctx, proxies, taskName)
	for _, r := range batch.Results {
		if err := s.RecordValidationResult(ctx, r.ID, r.Success, r.Speed, r.Anonymity); err != nil {
			logger.Log.Warn("failed to record verdict", "task", taskName, "proxy_id", r.ID, "error", err)
		}
	}

	logger.Log.Info("validation cycle finished", "task", taskName,
		"total", batch.Total, "success", batch.Success, "failed", batch.Failed)
	return nil
}

// RecordValidationResult delegates straight to record_verdict.
func (s *ProxyService) RecordValidationResult(ctx context.Context, id int64, success bool, speed *float64, anonymity *string) error {
	return s.repo.RecordVerdict(ctx, store.Verdict{ID: id, Success: success, Speed: speed, Anonymity: anonymity})
}

// GetActiveProxies is the ranked selection query serving the read API.
func (s *ProxyService) GetActiveProxies(ctx context.Context, filter store.ActiveFilter, limit int) ([]store.Proxy, error) {
	return s.repo.IterActive(ctx, filter, limit)
}

// CleanupFailedProxies evicts proxies at or past the failure ceiling.
func (s *ProxyService) CleanupFailedProxies(ctx context.Context) (int64, error) {
	return s.repo.CleanupFailed(ctx, s.cfg.Scheduler.MaxFailCount)
}

// CleanupStaleProxies evicts proxies stale per the dual last_success/
// created_at condition.
func (s *ProxyService) CleanupStaleProxies(ctx context.Context) (int64, error) {
	return s.repo.CleanupStale(ctx, s.cfg.Scheduler.StaleDays)
}

// Cleanup runs both eviction passes in one task body, corresponding to
// cleanup_task.
func (s *ProxyService) Cleanup(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "service.cleanup")
	defer span.End()

	failed, err := s.CleanupFailedProxies(ctx)
	if err != nil {
		return fmt.Errorf("cleanup failed proxies: %w", err)
	}
	stale, err := s.CleanupStaleProxies(ctx)
	if err != nil {
		return fmt.Errorf("cleanup stale proxies: %w", err)
	}

	logger.Log.Info("cleanup cycle finished", "evicted_failed", failed, "evicted_stale", stale)
	return nil
}

// GetProxiesWithoutCountry returns proxies of any status missing a country tag.
func (s *ProxyService) GetProxiesWithoutCountry(ctx context.Context, limit int) ([]store.Proxy, error) {
	return s.repo.GetWithoutCountry(ctx, limit)
}

// BatchUpdateCountries applies many country assignments in one statement.
func (s *ProxyService) BatchUpdateCountries(ctx context.Context, updates []store.CountryUpdate) error {
	return s.repo.BatchSetCountry(ctx, updates)
}

// Stats serves GET /api/stats.
func (s *ProxyService) Stats(ctx context.Context) (store.Stats, error) {
	return s.repo.Stats(ctx)
}
