package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/glizzus/softtimer/internal/schedule"
)

type TimerConfig struct {
	LogLevel          string        `env:"TIMER_LOG_LEVEL, default=info"`
	LogFormat         string        `env:"TIMER_LOG_FORMAT, default=text"`
	HeartbeatInterval time.Duration `env:"TIMER_HEARTBEAT_INTERVAL, default=2s"`
	Cron              string        `env:"TIMER_CRON"`
	MetricsAddr       string        `env:"TIMER_METRICS_ADDR, default=:9464"`
	ShutdownTimeout   time.Duration `env:"TIMER_SHUTDOWN_TIMEOUT, default=5s"`
}

func NewTimerConfigFromEnv() (*TimerConfig, error) {
	var cfg TimerConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	if cfg.HeartbeatInterval <= 0 {
		return nil, fmt.Errorf("TIMER_HEARTBEAT_INTERVAL must be greater than 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, fmt.Errorf("TIMER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if cfg.Cron != "" {
		if err := schedule.ValidateCron(cfg.Cron); err != nil {
			return nil, fmt.Errorf("invalid TIMER_CRON: %w", err)
		}
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("TIMER_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Level parses LogLevel as a slog level name such as "debug" or "warn".
func (c *TimerConfig) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid TIMER_LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// NewLogger builds a logger writing to stderr in the configured format.
func (c *TimerConfig) NewLogger() *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
