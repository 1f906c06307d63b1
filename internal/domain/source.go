package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PoolPriceSource returns the USD price of one side of a pool.
type PoolPriceSource interface {
	PoolPriceUSD(ctx context.Context, pool PoolRef) (decimal.Decimal, error)
}

// RateSource returns the conversion rate from USD to the display currency.
type RateSource interface {
	USDRate(ctx context.Context) (decimal.Decimal, error)
}

// PresenceSyncer reflects the latest price and trend in chat presence.
type PresenceSyncer interface {
	Sync(ctx context.Context, symbol string, price decimal.Decimal, trend Trend)
}

// TickPublisher fans completed ticks out to other processes.
type TickPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Alerter delivers operator notifications filtered by event type.
type Alerter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Notification event types.
const (
	EventTrendChanged = "trend_changed"
	EventPoolChanged  = "pool_changed"
)
