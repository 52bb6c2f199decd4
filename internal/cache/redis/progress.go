package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

// ProgressBus implements domain.ProgressBus using Redis Pub/Sub. Replay runs
// publish their in-flight equity snapshots here so external monitors can
// watch long batch jobs without touching the database.
type ProgressBus struct {
	rdb *redis.Client
}

// NewProgressBus creates a ProgressBus backed by the given Client.
func NewProgressBus(c *Client) *ProgressBus {
	return &ProgressBus{rdb: c.Underlying()}
}

// Publish sends a raw payload to a Pub/Sub channel.
func (pb *ProgressBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := pb.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.ProgressBus = (*ProgressBus)(nil)
