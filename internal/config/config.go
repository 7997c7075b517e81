// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type AdminConfig struct {
	Port       int           `yaml:"port"`
	APIKey     string        `yaml:"api_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"` // empty means in-memory security stores
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RateLimitRule is one fixed-window budget: at most MaxRequests per Window.
type RateLimitRule struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

type SecurityConfig struct {
	VariantLimit   RateLimitRule `yaml:"variant_limit"` // GET /api/cancellation
	SubmitLimit    RateLimitRule `yaml:"submit_limit"`  // POST /api/cancellation
	CSRFTokenTTL   time.Duration `yaml:"csrf_token_ttl"`
	RateLimitSweep time.Duration `yaml:"rate_limit_sweep"`
	CSRFSweep      time.Duration `yaml:"csrf_sweep"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Admin    AdminConfig    `yaml:"admin"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Security SecurityConfig `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Admin.APIKey == "" {
		return nil, errors.New("admin.api_key is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 10 * time.Second
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 9090
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Security.VariantLimit.MaxRequests <= 0 {
		cfg.Security.VariantLimit = RateLimitRule{MaxRequests: 50, Window: 5 * time.Minute}
	}
	if cfg.Security.SubmitLimit.MaxRequests <= 0 {
		cfg.Security.SubmitLimit = RateLimitRule{MaxRequests: 10, Window: 15 * time.Minute}
	}
	if cfg.Security.CSRFTokenTTL <= 0 {
		cfg.Security.CSRFTokenTTL = 30 * time.Minute
	}
	if cfg.Security.RateLimitSweep <= 0 {
		cfg.Security.RateLimitSweep = time.Minute
	}
	if cfg.Security.CSRFSweep <= 0 {
		cfg.Security.CSRFSweep = 5 * time.Minute
	}
}
