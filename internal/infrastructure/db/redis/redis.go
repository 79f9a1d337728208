// Package redis holds the Redis-backed pieces of the service: the client
// bootstrap and the revoked-token denylist.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config selects the Redis server the token denylist lives on.
type Config struct {
	Addr     string
	Password string
	DB       int
	// DialTimeout bounds both the dial and the startup ping. Zero means 5s.
	DialTimeout time.Duration
}

func (c Config) options() *redis.Options {
	timeout := c.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &redis.Options{
		Addr:        c.Addr,
		Password:    c.Password,
		DB:          c.DB,
		DialTimeout: timeout,
	}
}

// Connect opens a client and pings it once. The client is closed again if
// the ping fails.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := cfg.options()
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s db %d: %w", cfg.Addr, cfg.DB, err)
	}
	return client, nil
}
