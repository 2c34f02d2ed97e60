package database

import (
	"context"

	"getconnected/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the preference cache client. Pool size and
// timeouts come from configuration; the client connects lazily.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  config.GetDuration(cfg.DialTimeout),
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	})
}

// RedisTarget makes the cache client waitable by name.
func RedisTarget(client *redis.Client) Target {
	return Target{
		Name: "redis",
		Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
}
