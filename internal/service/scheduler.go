package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler owns the single repeating fetch timer. Start replaces the timer;
// after it returns exactly one loop is armed.
type Scheduler struct {
	base   context.Context
	run    func(ctx context.Context)
	logger *slog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration

	active   atomic.Int32
	inflight sync.WaitGroup
}

// NewScheduler creates a stopped Scheduler. Every tick calls run with base,
// so restarting the timer never cancels a fetch already in flight.
func NewScheduler(base context.Context, run func(ctx context.Context), logger *slog.Logger) *Scheduler {
	return &Scheduler{
		base:   base,
		run:    run,
		logger: logger.With(slog.String("component", "scheduler")),
	}
}

// Start cancels the running loop, if any, waits for it to exit and arms a new
// one firing every interval.
func (s *Scheduler) Start(interval time.Duration) {
	if interval <= 0 {
		s.logger.Warn("ignoring non-positive refresh interval", slog.Duration("interval", interval))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	ctx, cancel := context.WithCancel(s.base)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.interval = interval
	s.active.Add(1)

	go s.loop(ctx, interval, done)

	s.logger.Info("price updates running",
		slog.Duration("interval", interval),
		slog.Float64("interval_seconds", interval.Seconds()),
	)
}

// Stop disarms the timer and waits for fetches started by it to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()

	s.inflight.Wait()
}

// Interval returns the period of the armed loop, or zero when stopped.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Active reports how many timer loops are alive.
func (s *Scheduler) Active() int {
	return int(s.active.Load())
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.interval = 0
}

// loop fires run on every tick in its own goroutine. Slow cycles do not hold
// back the next tick, so cycles can overlap.
func (s *Scheduler) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)
	defer s.active.Add(-1)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.inflight.Add(1)
			go func() {
				defer s.inflight.Done()
				s.run(s.base)
			}()
		}
	}
}
