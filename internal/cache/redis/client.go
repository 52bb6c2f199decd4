// Package redis implements run coordination (per-day replay locks) and
// progress publishing using go-redis/v9. Redis is optional: without it a
// single worker replays with no cross-process coordination.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ClientConfig carries the connection parameters taken from config.
type ClientConfig struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	MaxRetries int
	TLSEnabled bool
}

// Client wraps the go-redis driver. The lock and progress types in this
// package share it rather than each holding their own connection.
type Client struct {
	rdb *redis.Client
}

// New dials Redis and verifies connectivity with an initial ping before
// handing back the wrapper.
func New(ctx context.Context, cfg ClientConfig) (*Client, error) {
	opts := &redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		PoolSize:   cfg.PoolSize,
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Underlying exposes the raw driver for the lock and progress helpers.
func (c *Client) Underlying() *redis.Client {
	return c.rdb
}
