package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/poolticker/internal/domain"
)

// latestTTL bounds how long the last tick stays readable after the bot stops.
const latestTTL = 24 * time.Hour

// TickBus publishes ticks on a Pub/Sub channel and keeps the most recent
// payload under "<channel>:latest" so late subscribers can GET it.
type TickBus struct {
	rdb *redis.Client
}

// NewTickBus creates a TickBus over c.
func NewTickBus(c *Client) *TickBus {
	return &TickBus{rdb: c.rdb}
}

// LatestKey returns the key that holds the last payload published on channel.
func LatestKey(channel string) string {
	return channel + ":latest"
}

// Publish sends payload to channel and stores it as the latest tick in one
// round trip.
func (b *TickBus) Publish(ctx context.Context, channel string, payload []byte) error {
	_, err := b.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Publish(ctx, channel, payload)
		p.Set(ctx, LatestKey(channel), payload, latestTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}

var _ domain.TickPublisher = (*TickBus)(nil)
