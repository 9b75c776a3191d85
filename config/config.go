package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	DatabaseURL      string `env:"DATABASE_URL,required" validate:"required"`
	DatabaseMaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"25" validate:"min=1,max=200"`

	CacheURL string `env:"CACHE_URL" envDefault:"redis://localhost:6379/0" validate:"required"`

	// Scheduling service only: where the data service lives.
	DataServiceURL string `env:"DATA_SERVICE_URL" envDefault:"http://localhost:8080"`

	QueueCapacity     int `env:"QUEUE_CAPACITY" envDefault:"100" validate:"min=1,max=10000"`
	StaleJobCutoffSec int `env:"STALE_JOB_CUTOFF_SEC" envDefault:"600" validate:"min=60"`
	ReaperIntervalSec int `env:"REAPER_INTERVAL_SEC" envDefault:"60" validate:"min=1"`

	MinDaysOffPerWeek int `env:"MIN_DAYS_OFF_PER_WEEK" envDefault:"1" validate:"min=0,max=7"`
	MaxDaysOffPerWeek int `env:"MAX_DAYS_OFF_PER_WEEK" envDefault:"3" validate:"min=0,max=7,gtefield=MinDaysOffPerWeek"`
	MaxDailyShiftDiff int `env:"MAX_DAILY_SHIFT_DIFF" envDefault:"2" validate:"min=0"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) ListenAddr() string {
	return c.Host + ":" + c.Port
}

func (c *Config) MetricsAddr() string {
	return c.Host + ":" + c.MetricsPort
}

func (c *Config) StaleJobCutoff() time.Duration {
	return time.Duration(c.StaleJobCutoffSec) * time.Second
}

func (c *Config) ReaperInterval() time.Duration {
	return time.Duration(c.ReaperIntervalSec) * time.Second
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
