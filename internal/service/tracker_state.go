package service

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/poolticker/internal/domain"
)

// TrackerState is the single in-memory store shared by the fetcher, the chat
// commands and the status route. Every accessor takes the lock for the field
// it touches only; callers that read several fields at different times may
// observe interleaved updates from other goroutines.
type TrackerState struct {
	mu       sync.RWMutex
	pool     domain.PoolRef
	symbol   string
	last     decimal.NullDecimal
	trend    domain.Trend
	interval time.Duration
}

// NewTrackerState returns a state with no price yet and an upward trend.
func NewTrackerState(pool domain.PoolRef, symbol string, interval time.Duration) *TrackerState {
	return &TrackerState{
		pool:     pool,
		symbol:   symbol,
		trend:    domain.TrendUp,
		interval: interval,
	}
}

// Pool returns the pool currently selected for fetching.
func (s *TrackerState) Pool() domain.PoolRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool
}

// Symbol returns the display symbol.
func (s *TrackerState) Symbol() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.symbol
}

// SetPool replaces the pool selection and display symbol. lastPrice and
// trend carry over.
func (s *TrackerState) SetPool(pool domain.PoolRef, symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool = pool
	s.symbol = symbol
}

// RefreshInterval returns the scheduler period.
func (s *TrackerState) RefreshInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval
}

// SetRefreshInterval stores a new period. Bounds are enforced by callers.
func (s *TrackerState) SetRefreshInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = d
}

// LastPrice returns the last converted price, invalid before the first
// successful fetch.
func (s *TrackerState) LastPrice() decimal.NullDecimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Trend returns the current direction.
func (s *TrackerState) Trend() domain.Trend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trend
}

// ObservePrice updates the trend from price compared to lastPrice and
// reports whether it flipped. lastPrice itself is left alone; see
// SetLastPrice.
func (s *TrackerState) ObservePrice(price decimal.Decimal) (domain.Trend, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.last.Valid {
		return s.trend, false
	}
	prev := s.trend
	s.trend = domain.NextTrend(s.trend, s.last.Decimal, price)
	return s.trend, s.trend != prev
}

// SetLastPrice records price as the latest converted price.
func (s *TrackerState) SetLastPrice(price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = decimal.NullDecimal{Decimal: price, Valid: true}
}

// Snapshot returns every field under one lock.
func (s *TrackerState) Snapshot() domain.TrackerSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.TrackerSnapshot{
		Pool:            s.pool,
		Symbol:          s.symbol,
		LastPrice:       s.last,
		Trend:           s.trend,
		RefreshInterval: s.interval,
	}
}
