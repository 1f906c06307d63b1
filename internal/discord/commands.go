package discord

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/poolticker/internal/config"
	"github.com/alanyoungcy/poolticker/internal/domain"
	"github.com/alanyoungcy/poolticker/internal/service"
)

// Replies sent by the command handler.
const (
	ReplyPriceUnavailable = "Price not available yet, please wait..."
	ReplySetPoolUsage     = "Usage: !setpool <network> <pool_address> <base|quote> <symbol>"
	ReplySetIntervalUsage = "Usage: !setinterval <seconds>"
	ReplyIntervalTooShort = "Minimum refresh interval is 5 seconds."
	ReplyHelp             = "**Commands:**\n" +
		"`!price` → shows current price\n" +
		"`!trend` → shows current trend (⬈ / ⬊)\n" +
		"`!setpool <network> <pool_address> <base|quote> <symbol>` → change pool/token\n" +
		"`!setinterval <seconds>` → change refresh interval\n" +
		"`!help` → show this help menu"
)

// maxIntervalSeconds keeps the Duration multiplication from overflowing.
var maxIntervalSeconds = decimal.NewFromInt(math.MaxInt32)

// maxNumberLen bounds the accepted token so exponent forms stay cheap to
// rescale.
const maxNumberLen = 32

// defaultSymbol labels a pool when no symbol is given.
const defaultSymbol = "TOKEN"

// Message is an inbound chat message.
type Message struct {
	AuthorIsBot bool
	Content     string
	GuildID     string
	AuthorID    string
}

// Fetcher runs one price cycle synchronously.
type Fetcher interface {
	FetchAndApply(ctx context.Context) (domain.Tick, error)
}

// Rescheduler re-arms the fetch timer.
type Rescheduler interface {
	Start(interval time.Duration)
}

// Commands parses and executes "!" commands against the tracker state.
type Commands struct {
	state     *service.TrackerState
	fetcher   Fetcher
	scheduler Rescheduler
	alerts    domain.Alerter
	logger    *slog.Logger
}

// NewCommands creates a command handler.
func NewCommands(state *service.TrackerState, fetcher Fetcher, scheduler Rescheduler, logger *slog.Logger) *Commands {
	return &Commands{
		state:     state,
		fetcher:   fetcher,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "commands")),
	}
}

// WithAlerter sends pool_changed notifications through a.
func (c *Commands) WithAlerter(a domain.Alerter) *Commands {
	c.alerts = a
	return c
}

// Handle executes msg and returns the reply. ok is false when the message is
// not a command or comes from a bot, in which case nothing is sent back.
func (c *Commands) Handle(ctx context.Context, msg Message) (reply string, ok bool) {
	if msg.AuthorIsBot {
		return "", false
	}
	args := strings.Fields(msg.Content)
	if len(args) == 0 {
		return "", false
	}

	switch strings.ToLower(args[0]) {
	case "!price":
		return c.price(), true
	case "!trend":
		return "Current trend: " + c.state.Trend().Glyph(), true
	case "!setpool":
		return c.setPool(ctx, msg, args[1:]), true
	case "!setinterval":
		return c.setInterval(ctx, msg, args[1:]), true
	case "!help":
		return ReplyHelp, true
	}
	return "", false
}

func (c *Commands) price() string {
	snap := c.state.Snapshot()
	if !snap.LastPrice.Valid {
		return ReplyPriceUnavailable
	}
	return fmt.Sprintf("%s Price: %s %s", snap.Symbol, domain.FormatPrice(snap.LastPrice.Decimal), snap.Trend.Glyph())
}

func (c *Commands) setPool(ctx context.Context, msg Message, args []string) string {
	if len(args) < 4 {
		return ReplySetPoolUsage
	}

	pool := domain.PoolRef{
		Network: args[0],
		Address: args[1],
		Side:    domain.ParseSide(args[2]),
	}
	symbol := strings.ToUpper(args[3])
	if symbol == "" {
		symbol = defaultSymbol
	}
	c.state.SetPool(pool, symbol)

	c.logger.InfoContext(ctx, "pool changed",
		slog.String("guild_id", msg.GuildID),
		slog.String("author_id", msg.AuthorID),
		slog.String("network", pool.Network),
		slog.String("pool", pool.Address),
		slog.String("side", string(pool.Side)),
		slog.String("symbol", symbol),
	)

	// Errors are logged by the fetcher; the reply confirms the switch either way.
	_, _ = c.fetcher.FetchAndApply(ctx)

	if c.alerts != nil {
		title := fmt.Sprintf("Now tracking %s", symbol)
		body := fmt.Sprintf("%s %s (%s)", pool.Network, pool.Address, pool.Side)
		if err := c.alerts.Notify(ctx, domain.EventPoolChanged, title, body); err != nil {
			c.logger.WarnContext(ctx, "pool change alert failed", slog.String("error", err.Error()))
		}
	}

	return fmt.Sprintf("Now tracking %s (%s)", symbol, strings.ToUpper(string(pool.Side)))
}

func (c *Commands) setInterval(ctx context.Context, msg Message, args []string) string {
	if len(args) < 1 {
		return ReplySetIntervalUsage
	}
	seconds, ok := parseSeconds(args[0])
	if !ok {
		return ReplySetIntervalUsage
	}
	interval := time.Duration(seconds) * time.Second
	if interval < config.MinRefreshInterval {
		return ReplyIntervalTooShort
	}

	c.state.SetRefreshInterval(interval)
	c.scheduler.Start(interval)

	c.logger.InfoContext(ctx, "refresh interval changed",
		slog.String("guild_id", msg.GuildID),
		slog.String("author_id", msg.AuthorID),
		slog.Int64("seconds", seconds),
	)
	return fmt.Sprintf("Refresh interval set to %d seconds.", seconds)
}

// parseSeconds reads a numeric token and truncates it toward zero, so "10.5"
// is 10 seconds. ok is false for non-numbers and values that do not fit.
func parseSeconds(s string) (int64, bool) {
	if len(s) > maxNumberLen {
		return 0, false
	}
	n, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if n.Exponent() < -maxNumberLen {
		// Every digit is fractional.
		return 0, true
	}
	if n.Exponent() > 9 {
		if n.IsNegative() {
			return math.MinInt32, true
		}
		return 0, false
	}
	n = n.Truncate(0)
	if n.Abs().GreaterThan(maxIntervalSeconds) {
		if n.IsNegative() {
			return math.MinInt32, true
		}
		return 0, false
	}
	return n.IntPart(), true
}
