// Package config holds the typed configuration tree for the proxy pool
// manager, loaded in layers by Loader (defaults -> yaml file -> env).
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config корневая структура конфигурации
type Config struct {
	App       AppConfig       `koanf:"app"`
	HTTP      HTTPConfig      `koanf:"http"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Tracing   TracingConfig   `koanf:"tracing"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Crawl     CrawlConfig     `koanf:"crawl"`
	Validator ValidatorConfig `koanf:"validator"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Quality   QualityConfig   `koanf:"quality"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Export    ExportConfig    `koanf:"export"`
}

// AppConfig общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Worker      string `koanf:"worker"`       // identity of this worker process, for logging
}

// HTTPConfig настройки read-API сервера
type HTTPConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxProxiesLimit int           `koanf:"max_proxies_limit"` // cap on ?limit= query param
}

// LogConfig настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	Output     string `koanf:"output"`
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"`
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// DatabaseConfig настройки базы данных
type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MinPoolSize     int           `koanf:"min_pool_size"`
	MaxPoolSize     int           `koanf:"max_pool_size"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSN возвращает строку подключения postgres
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// CacheConfig настройки координационного кэша (Redis)
type CacheConfig struct {
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CrawlConfig настройки координатора обхода источников
type CrawlConfig struct {
	Interval             time.Duration `koanf:"interval"`
	MaxConcurrentSpiders int           `koanf:"max_concurrent_spiders"`
	RequestTimeout       time.Duration `koanf:"request_timeout"`
}

// ValidatorConfig настройки валидатора
type ValidatorConfig struct {
	TestURL                 string        `koanf:"test_url"`
	TestURLCN               string        `koanf:"test_url_cn"`
	Timeout                 time.Duration `koanf:"timeout"`
	MaxConcurrentValidators int           `koanf:"max_concurrent_validators"`
	BatchLimit              int           `koanf:"batch_limit"`
}

// SchedulerConfig интервалы периодических задач и пороги обслуживания пула
type SchedulerConfig struct {
	ValidateInterval        time.Duration `koanf:"validate_interval"`
	ValidateSuccessInterval time.Duration `koanf:"validate_success_interval"`
	CleanupInterval         time.Duration `koanf:"cleanup_interval"`
	UpdateCountryInterval   time.Duration `koanf:"update_country_interval"`
	MaxFailCount            int           `koanf:"max_fail_count"`
	StaleDays               int           `koanf:"stale_days"`
	LeaderLockTTL           time.Duration `koanf:"leader_lock_ttl"`
	TaskStateTTL            time.Duration `koanf:"task_state_ttl"`
}

// QualityConfig веса read-time скоринга качества прокси (должны суммироваться в ~1.0)
type QualityConfig struct {
	WeightSuccessRate float64 `koanf:"weight_success_rate"`
	WeightSpeed       float64 `koanf:"weight_speed"`
	WeightStability   float64 `koanf:"weight_stability"`
}

// RateLimitConfig ограничение частоты исходящих запросов к внешним источникам
type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Requests        int           `koanf:"requests"`
	Window          time.Duration `koanf:"window"`
	Backend         string        `koanf:"backend"` // memory, redis
	BurstSize       int           `koanf:"burst_size"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// ExportConfig настройки экспорта (XLSX/CSV/PDF)
type ExportConfig struct {
	MaxRows int `koanf:"max_rows"`
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Database.MinPoolSize < 0 || c.Database.MaxPoolSize <= 0 || c.Database.MinPoolSize > c.Database.MaxPoolSize {
		errs = append(errs, "database.min_pool_size/max_pool_size are inconsistent")
	}

	sum := c.Quality.WeightSuccessRate + c.Quality.WeightSpeed + c.Quality.WeightStability
	if sum < 0.99 || sum > 1.01 {
		errs = append(errs, fmt.Sprintf("quality weights must sum to ~1.0, got %.3f", sum))
	}

	if c.Scheduler.MaxFailCount <= 0 {
		errs = append(errs, "scheduler.max_fail_count must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
