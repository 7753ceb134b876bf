// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	defaultShutdownTimeoutSeconds = 30
	defaultLogLevel               = "info"
	defaultGenerateCooldown       = 10
	defaultGenerateMaxPerIP       = 60
	defaultLineupBacklogCron      = "*/5 * * * *"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type Config struct {
	App struct {
		Name                   string `yaml:"name"`
		Environment            string `yaml:"environment"`
		Port                   int    `yaml:"port"`
		BaseURL                string `yaml:"base_url"`
		LogLevel               string `yaml:"log_level"`
		ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`

	RateLimit struct {
		Enabled                 bool `yaml:"enabled"`
		GenerateCooldownSeconds int  `yaml:"generate_cooldown_seconds"`
		GenerateMaxPerIPPerHour int  `yaml:"generate_max_per_ip_per_hour"`
		TrustProxy              bool `yaml:"trust_proxy"`
	} `yaml:"rate_limit"`

	Scheduler struct {
		Enabled           bool   `yaml:"enabled"`
		LineupBacklogCron string `yaml:"lineup_backlog_cron"`
	} `yaml:"scheduler"`

	Features struct {
		EnableMetrics bool `yaml:"enable_metrics"`
		EnableDebug   bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Environment overrides for container deployments
	if v := os.Getenv("DATABASE_FILENAME"); v != "" {
		cfg.Database.Filename = v
	}
	if v := os.Getenv("APP_ENVIRONMENT"); v != "" {
		cfg.App.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultLogLevel
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		c.App.ShutdownTimeoutSeconds = defaultShutdownTimeoutSeconds
	}
	if c.RateLimit.GenerateCooldownSeconds <= 0 {
		c.RateLimit.GenerateCooldownSeconds = defaultGenerateCooldown
	}
	if c.RateLimit.GenerateMaxPerIPPerHour <= 0 {
		c.RateLimit.GenerateMaxPerIPPerHour = defaultGenerateMaxPerIP
	}
	if c.Scheduler.LineupBacklogCron == "" {
		c.Scheduler.LineupBacklogCron = defaultLineupBacklogCron
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if _, err := zerolog.ParseLevel(c.App.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.App.LogLevel, err)
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Scheduler.Enabled {
		if _, err := cron.ParseStandard(c.Scheduler.LineupBacklogCron); err != nil {
			return fmt.Errorf("invalid scheduler.lineup_backlog_cron %q: %w", c.Scheduler.LineupBacklogCron, err)
		}
	}

	return nil
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.App.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) GenerateCooldown() time.Duration {
	return time.Duration(c.RateLimit.GenerateCooldownSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// Redacted returns a view safe for logging
func (c *Config) Redacted() map[string]any {
	return map[string]any{
		"name":          c.App.Name,
		"environment":   c.App.Environment,
		"port":          c.App.Port,
		"logLevel":      c.App.LogLevel,
		"databaseFile":  c.Database.Filename,
		"enableMetrics": c.Features.EnableMetrics,
		"rateLimit":     c.RateLimit.Enabled,
		"scheduler":     c.Scheduler.Enabled,
	}
}
