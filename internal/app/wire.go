package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/poolticker/internal/cache/redis"
	"github.com/alanyoungcy/poolticker/internal/config"
	"github.com/alanyoungcy/poolticker/internal/discord"
	"github.com/alanyoungcy/poolticker/internal/domain"
	"github.com/alanyoungcy/poolticker/internal/notify"
	"github.com/alanyoungcy/poolticker/internal/platform/exchangerate"
	"github.com/alanyoungcy/poolticker/internal/platform/geckoterminal"
	"github.com/alanyoungcy/poolticker/internal/server"
	"github.com/alanyoungcy/poolticker/internal/server/handler"
	"github.com/alanyoungcy/poolticker/internal/service"
)

// Dependencies bundles the wired components the run loop drives.
type Dependencies struct {
	State     *service.TrackerState
	Session   *discord.Session
	Tracker   *service.PriceTracker
	Scheduler *service.Scheduler
	Commands  *discord.Commands
	Server    *server.Server // nil when the status server is disabled
}

// Wire constructs every component from cfg. ctx is the base context of the
// scheduler; cancelling it stops all future fetches. The returned cleanup
// releases optional connections and must be called on shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	timeout := cfg.Providers.HTTPTimeout.Duration
	pools := geckoterminal.NewClient(cfg.Providers.GeckoTerminalURL, timeout)
	rates := exchangerate.NewClient(cfg.Providers.ExchangeRateURL, "", timeout)

	state := service.NewTrackerState(domain.PoolRef{
		Network: cfg.Tracker.Network,
		Address: cfg.Tracker.PoolAddress,
		Side:    domain.ParseSide(cfg.Tracker.TrackedSide),
	}, cfg.Tracker.Symbol, cfg.Tracker.RefreshInterval.Duration)

	session, err := discord.NewSession(cfg.Discord.Token, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: %w", err)
	}

	presence := discord.NewPresence(session, discord.PresenceConfig{
		GreenRole:   cfg.Discord.GreenRole,
		RedRole:     cfg.Discord.RedRole,
		Concurrency: cfg.Discord.GuildConcurrency,
	}, logger)

	tracker := service.NewPriceTracker(state, pools, rates, presence, logger)

	// --- Redis tick fan-out (optional) ---
	if cfg.Redis.Enabled {
		rc, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			logger.WarnContext(ctx, "redis unavailable, tick publishing disabled",
				slog.String("addr", cfg.Redis.Addr),
				slog.String("error", err.Error()),
			)
		} else {
			closers = append(closers, func() { _ = rc.Close() })
			tracker.WithTickPublisher(redis.NewTickBus(rc), cfg.Redis.Channel)
		}
	}

	// --- Notifications (optional) ---
	notifier := newNotifier(cfg, logger)

	scheduler := service.NewScheduler(ctx, tracker.Run, logger)
	closers = append(closers, scheduler.Stop)

	commands := discord.NewCommands(state, tracker, scheduler, logger)
	if notifier.Enabled() {
		tracker.WithAlerter(notifier)
		commands.WithAlerter(notifier)
	}

	deps := &Dependencies{
		State:     state,
		Session:   session,
		Tracker:   tracker,
		Scheduler: scheduler,
		Commands:  commands,
	}
	if cfg.Server.Enabled {
		deps.Server = server.NewServer(server.Config{
			Port:        cfg.Server.Port,
			CORSOrigins: cfg.Server.CORSOrigins,
		}, handler.NewStatusHandler(state), logger)
	}

	return deps, cleanup, nil
}

func newNotifier(cfg *config.Config, logger *slog.Logger) *notify.Notifier {
	timeout := cfg.Providers.HTTPTimeout.Duration
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender("", cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, timeout))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL, timeout))
	}
	return notify.NewNotifier(senders, cfg.Notify.Events, logger)
}
