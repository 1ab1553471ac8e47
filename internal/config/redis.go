package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// RedisConfig is optional: without REDIS_ADDR due jobs are only logged.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	Stream   string `env:"REDIS_STREAM, default=timer_jobs"`
}

func NewRedisConfigFromEnv() (*RedisConfig, error) {
	var cfg RedisConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Enabled reports whether due jobs should be published to Redis.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}
