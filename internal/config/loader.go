// internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "PROXYPOOL_"
	configEnvVar = "CONFIG_PATH"
)

// Loader загружает конфигурацию из разных источников
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader создаёт новый загрузчик конфигурации
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"config/config.yaml",
			"/etc/proxypool/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption опция конфигурации загрузчика
type LoaderOption func(*Loader)

// WithConfigPaths устанавливает пути поиска конфигурации
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix устанавливает префикс переменных окружения
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// Load загружает конфигурацию с приоритетом:
// 1. Defaults (самый низкий)
// 2. Config file (yaml)
// 3. Environment variables (самый высокий)
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := l.loadConfigFile(); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		"app.name":        "proxypool",
		"app.version":     "1.0.0",
		"app.environment": "development",
		"app.worker":      "",

		"http.host":              "0.0.0.0",
		"http.port":              8080,
		"http.read_timeout":      15 * time.Second,
		"http.write_timeout":     15 * time.Second,
		"http.shutdown_timeout":  10 * time.Second,
		"http.max_proxies_limit": 20,

		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		"metrics.enabled":   true,
		"metrics.namespace": "proxypool",
		"metrics.subsystem": "",

		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "proxypool",
		"tracing.sample_rate":  0.1,

		"database.host":              "localhost",
		"database.port":              5432,
		"database.database":         "proxypool",
		"database.username":          "postgres",
		"database.password":          "",
		"database.ssl_mode":          "disable",
		"database.min_pool_size":     2,
		"database.max_pool_size":     20,
		"database.conn_max_lifetime": 30 * time.Minute,
		"database.conn_max_idle_time": 5 * time.Minute,
		"database.auto_migrate":     true,

		"cache.driver":      "redis",
		"cache.host":        "localhost",
		"cache.port":        6379,
		"cache.db":          0,
		"cache.default_ttl": 24 * time.Hour,

		"crawl.interval":                1 * time.Hour,
		"crawl.max_concurrent_spiders":  5,
		"crawl.request_timeout":         20 * time.Second,

		"validator.test_url":                  "http://www.gstatic.com/generate_204",
		"validator.test_url_cn":                "http://www.baidu.com/generate_204",
		"validator.timeout":                    25 * time.Second,
		"validator.max_concurrent_validators":  50,
		"validator.batch_limit":                200,

		"scheduler.validate_interval":         5 * time.Minute,
		"scheduler.validate_success_interval": 10 * time.Minute,
		"scheduler.cleanup_interval":          1 * time.Hour,
		"scheduler.update_country_interval":   6 * time.Hour,
		"scheduler.max_fail_count":            3,
		"scheduler.stale_days":                7,
		"scheduler.leader_lock_ttl":           300 * time.Second,
		"scheduler.task_state_ttl":            24 * time.Hour,

		"quality.weight_success_rate": 0.5,
		"quality.weight_speed":        0.3,
		"quality.weight_stability":    0.2,

		"rate_limit.enabled":          true,
		"rate_limit.requests":         30,
		"rate_limit.window":           time.Minute,
		"rate_limit.backend":          "memory",
		"rate_limit.burst_size":       5,
		"rate_limit.cleanup_interval": 5 * time.Minute,

		"export.max_rows": 5000,
	}

	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

// loadConfigFile загружает конфигурацию из файла
func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return l.k.Load(file.Provider(configPath), yaml.Parser())
		}
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}

	return fmt.Errorf("config file not found in paths: %v", l.configPaths)
}

// loadEnv загружает конфигурацию из переменных окружения
func (l *Loader) loadEnv() error {
	return l.k.Load(env.Provider(l.envPrefix, ".", func(s string) string {
		// PROXYPOOL_DATABASE_HOST -> database.host
		return strings.ReplaceAll(
			strings.ToLower(
				strings.TrimPrefix(s, l.envPrefix),
			),
			"_", ".",
		)
	}), nil)
}

// MustLoad загружает конфигурацию или паникует
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load удобная функция загрузки с дефолтными настройками
func Load() (*Config, error) {
	return NewLoader().Load()
}
