package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/poolticker/internal/domain"
)

// PriceTracker runs one fetch cycle: pool price in USD, USD rate, converted
// price, trend, presence, then lastPrice.
type PriceTracker struct {
	state    *TrackerState
	pools    domain.PoolPriceSource
	rates    domain.RateSource
	presence domain.PresenceSyncer
	bus      domain.TickPublisher
	channel  string
	alerts   domain.Alerter
	now      func() time.Time
	marshal  func(v any) ([]byte, error)
	logger   *slog.Logger
}

// NewPriceTracker creates a PriceTracker with its required collaborators.
func NewPriceTracker(
	state *TrackerState,
	pools domain.PoolPriceSource,
	rates domain.RateSource,
	presence domain.PresenceSyncer,
	logger *slog.Logger,
) *PriceTracker {
	return &PriceTracker{
		state:    state,
		pools:    pools,
		rates:    rates,
		presence: presence,
		now:      time.Now,
		marshal:  json.Marshal,
		logger:   logger.With(slog.String("component", "price_tracker")),
	}
}

// WithTickPublisher publishes every successful tick on channel.
func (t *PriceTracker) WithTickPublisher(bus domain.TickPublisher, channel string) *PriceTracker {
	t.bus = bus
	t.channel = channel
	return t
}

// WithAlerter sends trend_changed notifications through a.
func (t *PriceTracker) WithAlerter(a domain.Alerter) *PriceTracker {
	t.alerts = a
	return t
}

// Run is the scheduler entry point. Errors are already logged by
// FetchAndApply.
func (t *PriceTracker) Run(ctx context.Context) {
	_, _ = t.FetchAndApply(ctx)
}

// FetchAndApply performs one cycle. On any provider failure it logs, leaves
// the state untouched and returns the error.
//
// The pool is read when the cycle starts and the symbol when the result is
// applied, so a pool change that lands in between labels the old pool's
// price with the new symbol.
func (t *PriceTracker) FetchAndApply(ctx context.Context) (domain.Tick, error) {
	cycleID := uuid.New().String()
	pool := t.state.Pool()

	usd, err := t.pools.PoolPriceUSD(ctx, pool)
	if err != nil {
		t.logger.ErrorContext(ctx, "error fetching pool price",
			slog.String("cycle_id", cycleID),
			slog.String("network", pool.Network),
			slog.String("pool", pool.Address),
			slog.String("error", err.Error()),
		)
		return domain.Tick{}, fmt.Errorf("price_tracker: pool price: %w", err)
	}

	rate, err := t.rates.USDRate(ctx)
	if err != nil {
		t.logger.ErrorContext(ctx, "error fetching exchange rate",
			slog.String("cycle_id", cycleID),
			slog.String("error", err.Error()),
		)
		return domain.Tick{}, fmt.Errorf("price_tracker: exchange rate: %w", err)
	}

	price := usd.Mul(rate)
	prevPrice := t.state.LastPrice()
	trend, changed := t.state.ObservePrice(price)
	symbol := t.state.Symbol()
	fetchedAt := t.now()

	t.logger.InfoContext(ctx, "price fetched",
		slog.String("cycle_id", cycleID),
		slog.String("symbol", symbol),
		slog.String("price_usd", usd.StringFixed(4)),
		slog.String("price", domain.FormatPrice(price)),
		slog.String("trend", trend.Glyph()),
		slog.String("local_time", fetchedAt.Local().Format(time.TimeOnly)),
	)

	if t.presence != nil {
		t.presence.Sync(ctx, symbol, price, trend)
	}

	t.state.SetLastPrice(price)

	tick := domain.Tick{
		CycleID:   cycleID,
		Symbol:    symbol,
		Pool:      pool,
		PriceUSD:  usd,
		Rate:      rate,
		Price:     price,
		Trend:     trend,
		Changed:   changed,
		FetchedAt: fetchedAt,
	}

	t.publish(ctx, tick)
	if changed {
		t.alertTrend(ctx, tick, prevPrice)
	}

	return tick, nil
}

// tickEvent is the JSON published for each tick.
type tickEvent struct {
	Event     string          `json:"event"`
	CycleID   string          `json:"cycle_id"`
	Symbol    string          `json:"symbol"`
	Network   string          `json:"network"`
	Pool      string          `json:"pool"`
	Side      domain.Side     `json:"side"`
	PriceUSD  decimal.Decimal `json:"price_usd"`
	Rate      decimal.Decimal `json:"rate"`
	Price     decimal.Decimal `json:"price"`
	Trend     domain.Trend    `json:"trend"`
	Timestamp string          `json:"timestamp"`
}

func (t *PriceTracker) publish(ctx context.Context, tick domain.Tick) {
	if t.bus == nil {
		return
	}
	evt, err := t.marshal(tickEvent{
		Event:     "tick",
		CycleID:   tick.CycleID,
		Symbol:    tick.Symbol,
		Network:   tick.Pool.Network,
		Pool:      tick.Pool.Address,
		Side:      tick.Pool.Side,
		PriceUSD:  tick.PriceUSD,
		Rate:      tick.Rate,
		Price:     tick.Price,
		Trend:     tick.Trend,
		Timestamp: tick.FetchedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		t.logger.ErrorContext(ctx, "encode tick failed",
			slog.String("cycle_id", tick.CycleID),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := t.bus.Publish(ctx, t.channel, evt); err != nil {
		t.logger.WarnContext(ctx, "publish tick failed",
			slog.String("cycle_id", tick.CycleID),
			slog.String("channel", t.channel),
			slog.String("error", err.Error()),
		)
	}
}

func (t *PriceTracker) alertTrend(ctx context.Context, tick domain.Tick, prev decimal.NullDecimal) {
	if t.alerts == nil {
		return
	}
	title := fmt.Sprintf("%s trend %s", tick.Symbol, tick.Trend.Glyph())
	msg := domain.FormatPrice(tick.Price)
	if prev.Valid {
		msg = fmt.Sprintf("%s (was %s)", msg, domain.FormatPrice(prev.Decimal))
	}
	if err := t.alerts.Notify(ctx, domain.EventTrendChanged, title, msg); err != nil {
		t.logger.WarnContext(ctx, "trend alert failed",
			slog.String("cycle_id", tick.CycleID),
			slog.String("error", err.Error()),
		)
	}
}
