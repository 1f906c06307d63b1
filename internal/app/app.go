// Package app wires the pool ticker together and runs it until the process
// is told to stop.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/poolticker/internal/config"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// App is the root application object. It owns the configuration, logger, and
// cleanup functions run in reverse order by Close.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates an App from cfg.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all components, connects to Discord and serves the status route.
// The first fetch and the repeating timer start once the gateway reports
// ready. Run blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("network", a.cfg.Tracker.Network),
		slog.String("pool", a.cfg.Tracker.PoolAddress),
		slog.String("symbol", a.cfg.Tracker.Symbol),
		slog.Duration("refresh_interval", a.cfg.Tracker.RefreshInterval.Duration),
	)

	g, ctx := errgroup.WithContext(ctx)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	deps.Session.OnReady(ctx, func(ctx context.Context) {
		_, _ = deps.Tracker.FetchAndApply(ctx)
		deps.Scheduler.Start(deps.State.RefreshInterval())
	})
	deps.Session.HandleCommands(ctx, deps.Commands)

	if err := deps.Session.Open(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := deps.Session.Close(); err != nil {
			a.logger.Warn("discord close failed", slog.String("error", err.Error()))
		}
	})

	if deps.Server != nil {
		g.Go(deps.Server.Start)
		g.Go(func() error {
			<-ctx.Done()
			shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return deps.Server.Shutdown(shutCtx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		deps.Scheduler.Stop()
		return ctx.Err()
	})

	return g.Wait()
}

// Close tears down all resources in reverse registration order. Subsequent
// calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
