package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/retailgrid/orderdesk/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.limit",
	fx.Provide(
		NewRedisClient,
		NewTokenBucket,
		NewLimiter,
	),
)

// NewRedisClient returns nil when rate limiting is disabled; downstream
// constructors treat a nil client as a no-op limiter.
func NewRedisClient(cfg config.Config) *redis.Client {
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})
}
