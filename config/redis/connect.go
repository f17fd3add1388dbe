package redis

import (
	"context"
	"fmt"
	"sync"

	"uob-realtime/config"
	pkgRedis "uob-realtime/pkg/redis"
)

var (
	mu     sync.Mutex
	client *pkgRedis.Client
)

// Connect initializes and returns the gateway's Redis client
func Connect(ctx context.Context, cfg config.RedisConfig) (*pkgRedis.Client, error) {
	c, err := pkgRedis.NewClient(pkgRedis.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Password:        cfg.Password,
		DB:              cfg.DB,
		UseTLS:          cfg.UseTLS,
		MaxRetries:      cfg.MaxRetries,
		MinIdleConns:    cfg.MinIdleConns,
		PoolSize:        cfg.PoolSize,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	if err := ctx.Err(); err != nil {
		_ = c.Close()
		return nil, err
	}

	mu.Lock()
	client = c
	mu.Unlock()
	return c, nil
}

// ConnectClient connects with the smaller client-side settings used by
// notifyctl's operator commands.
func ConnectClient(cfg config.ClientRedisConfig) (*pkgRedis.Client, error) {
	c, err := pkgRedis.NewClient(pkgRedis.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
		UseTLS:   cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return c, nil
}

// Disconnect closes the Redis connection opened by Connect
func Disconnect() error {
	mu.Lock()
	c := client
	client = nil
	mu.Unlock()
	if c != nil {
		return c.Close()
	}
	return nil
}
