// Package app wires configuration, the store, coordination cache,
// validator, crawl coordinator, scheduler, and read API into one running
// worker process: component construction in New, telemetry init and
// startup in Run, then a signal-driven graceful shutdown in reverse order.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"proxypool/internal/api"
	"proxypool/internal/cache"
	"proxypool/internal/config"
	"proxypool/internal/crawl"
	_ "proxypool/internal/crawl/adapters" // registers the built-in crawl adapters via init()
	"proxypool/internal/logger"
	"proxypool/internal/metrics"
	"proxypool/internal/ratelimit"
	"proxypool/internal/scheduler"
	"proxypool/internal/service"
	"proxypool/internal/store"
	"proxypool/internal/telemetry"
	"proxypool/internal/validator"
)

// App owns every long-lived component of the worker process.
type App struct {
	cfg *config.Config

	pool        *pgxpool.Pool
	coordinator *cache.Coordinator
	geoCache    cache.Cache
	limiter     ratelimit.Limiter
	telemetry   *telemetry.Provider

	proxies   *service.ProxyService
	geo       service.GeoLookup
	scheduler *scheduler.Scheduler
	http      *httpServer
}

// New constructs the App, connecting to Postgres and, if configured, the
// coordination cache. On error it returns a nil App and leaves no
// connection open; on success the caller owns calling Close.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.InitWithConfig(logger.Config{
		Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output,
		FilePath: cfg.Log.FilePath, MaxSize: cfg.Log.MaxSize, MaxBackups: cfg.Log.MaxBackups,
		MaxAge: cfg.Log.MaxAge, Compress: cfg.Log.Compress,
	})

	if cfg.Metrics.Enabled {
		metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	}

	db, err := store.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := store.RunMigrations(ctx, db.Pool(), &cfg.Database); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	var coordinator *cache.Coordinator
	if cfg.Cache.Driver == "redis" {
		coordinator, err = cache.NewCoordinator(cfg.Cache)
		if err != nil {
			// The coordination cache is optional: leader election degrades to
			// every worker assuming leadership and task state just isn't
			// shared across restarts, neither of which is fatal. The
			// connection is not retried: the process runs without the
			// coordination cache until it is restarted.
			logger.Log.Warn("failed to connect coordination cache, continuing without it", "error", err)
			coordinator = nil
		}
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.New(&ratelimit.Config{
			Requests:        cfg.RateLimit.Requests,
			Window:          cfg.RateLimit.Window,
			Backend:         cfg.RateLimit.Backend,
			BurstSize:       cfg.RateLimit.BurstSize,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
			RedisAddr:       cfg.Cache.Address(),
		})
		if err != nil {
			logger.Log.Warn("failed to create rate limiter, continuing without it", "error", err)
			limiter = nil
		}
	}

	repo := store.NewPostgresRepository(db)
	crawler := crawl.NewCoordinator(cfg.Crawl, limiter)
	v := validator.New(cfg.Validator)
	proxies := service.New(repo, crawler, v, *cfg)

	geoCache := cache.NewMemoryCache(&cache.Options{
		Backend:    cache.BackendMemory,
		DefaultTTL: cfg.Cache.DefaultTTL,
		MaxEntries: 50000,
	})
	rawGeo := service.NewHTTPGeoLookup("http://ip-api.com/json/%s?fields=countryCode", cfg.Validator.Timeout)
	geo := service.NewCachedGeoLookup(rawGeo, geoCache, cfg.Cache.DefaultTTL)

	sched := scheduler.New(coordinator, cfg.Scheduler)

	apiServer := api.New(proxies, sched, cfg.HTTP.MaxProxiesLimit, cfg.Export.MaxRows)

	return &App{
		cfg:         cfg,
		pool:        db.Pool(),
		coordinator: coordinator,
		geoCache:    geoCache,
		limiter:     limiter,
		proxies:     proxies,
		geo:         geo,
		scheduler:   sched,
		http:        newHTTPServer(cfg.HTTP, apiServer.Routes()),
	}, nil
}

// Run starts telemetry, the scheduler, and the read API, then blocks until
// ctx is cancelled (typically by a signal handler in cmd/proxypoold).
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     a.cfg.Tracing.Enabled,
			Endpoint:    a.cfg.Tracing.Endpoint,
			ServiceName: a.cfg.Tracing.ServiceName,
			Version:     a.cfg.App.Version,
			Environment: a.cfg.App.Environment,
			SampleRate:  a.cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("failed to init telemetry", "error", err)
		} else {
			a.telemetry = tp
		}
	}

	a.scheduler.Start(ctx, a.cfg.Crawl.Interval, scheduler.SharedTasks{
		Crawl:              a.proxies.Crawl,
		Cleanup:            a.proxies.Cleanup,
		CountryUpdate:      func(ctx context.Context) error { return a.proxies.UpdateCountries(ctx, a.geo, a.cfg.Validator.BatchLimit) },
		ValidateSuccessful: a.proxies.ValidateSuccessful,
	}, a.proxies.ValidatePending)

	err := a.http.Serve(ctx, a.cfg.App.Version, a.cfg.App.Environment)

	a.scheduler.Stop()
	return err
}

// Close releases every resource acquired by New, in reverse order.
func (a *App) Close() {
	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(context.Background()); err != nil {
			logger.Log.Warn("failed to shutdown telemetry", "error", err)
		}
	}
	if a.limiter != nil {
		if err := a.limiter.Close(); err != nil {
			logger.Log.Warn("failed to close rate limiter", "error", err)
		}
	}
	if a.coordinator != nil {
		if err := a.coordinator.Close(); err != nil {
			logger.Log.Warn("failed to close coordination cache", "error", err)
		}
	}
	if a.geoCache != nil {
		if err := a.geoCache.Close(); err != nil {
			logger.Log.Warn("failed to close geo lookup cache", "error", err)
		}
	}
	a.pool.Close()
}
