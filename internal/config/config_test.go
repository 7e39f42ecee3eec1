package config

import (
	"testing"
)

func validConfig() Config {
	return Config{
		App:       AppConfig{Name: "proxypoold"},
		HTTP:      HTTPConfig{Port: 8080},
		Log:       LogConfig{Level: "info"},
		Database:  DatabaseConfig{MinPoolSize: 1, MaxPoolSize: 10},
		Quality:   QualityConfig{WeightSuccessRate: 0.5, WeightSpeed: 0.3, WeightStability: 0.2},
		Scheduler: SchedulerConfig{MaxFailCount: 5},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing app name",
			mutate:  func(c *Config) { c.App.Name = "" },
			wantErr: true,
		},
		{
			name:    "invalid port - zero",
			mutate:  func(c *Config) { c.HTTP.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port - too high",
			mutate:  func(c *Config) { c.HTTP.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "empty log level defaults to info",
			mutate:  func(c *Config) { c.Log.Level = "" },
			wantErr: false,
		},
		{
			name:    "min pool size greater than max",
			mutate:  func(c *Config) { c.Database.MinPoolSize = 20 },
			wantErr: true,
		},
		{
			name:    "max pool size zero",
			mutate:  func(c *Config) { c.Database.MaxPoolSize = 0 },
			wantErr: true,
		},
		{
			name:    "quality weights do not sum to one",
			mutate:  func(c *Config) { c.Quality.WeightSpeed = 0.9 },
			wantErr: true,
		},
		{
			name:    "max fail count zero",
			mutate:  func(c *Config) { c.Scheduler.MaxFailCount = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestConfig_IsDevelopmentIsProduction(t *testing.T) {
	tests := []struct {
		env         string
		development bool
		production  bool
	}{
		{"development", true, false},
		{"dev", true, false},
		{"production", false, true},
		{"prod", false, true},
		{"staging", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			c := &Config{App: AppConfig{Environment: tt.env}}
			if got := c.IsDevelopment(); got != tt.development {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.development)
			}
			if got := c.IsProduction(); got != tt.production {
				t.Errorf("IsProduction() = %v, want %v", got, tt.production)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5432, Database: "proxypool",
		Username: "app", Password: "secret", SSLMode: "disable",
	}
	want := "postgres://app:secret@db:5432/proxypool?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestCacheConfig_Address(t *testing.T) {
	c := CacheConfig{Host: "redis", Port: 6379}
	if got := c.Address(); got != "redis:6379" {
		t.Errorf("Address() = %q, want %q", got, "redis:6379")
	}
}
