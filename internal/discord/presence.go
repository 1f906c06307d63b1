package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/poolticker/internal/domain"
)

// PresenceConfig names the trend roles and bounds the guild fan-out.
type PresenceConfig struct {
	GreenRole   string
	RedRole     string
	Concurrency int
}

// Presence updates nickname and trend roles in every guild.
type Presence struct {
	api    GuildAPI
	cfg    PresenceConfig
	logger *slog.Logger
}

// NewPresence creates a Presence over api.
func NewPresence(api GuildAPI, cfg PresenceConfig, logger *slog.Logger) *Presence {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Presence{
		api:    api,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "presence")),
	}
}

// Nickname renders the display name for a price and trend.
func Nickname(symbol string, price decimal.Decimal, trend domain.Trend) string {
	return fmt.Sprintf("%s %s %s", symbol, trend.Glyph(), domain.FormatPrice(price))
}

// Sync applies the nickname and roles to every guild and returns once all
// guilds are done. Guilds are processed concurrently up to the configured
// limit; their order is not significant.
func (p *Presence) Sync(ctx context.Context, symbol string, price decimal.Decimal, trend domain.Trend) {
	nick := Nickname(symbol, price, trend)

	var g errgroup.Group
	g.SetLimit(p.cfg.Concurrency)
	for _, guildID := range p.api.GuildIDs() {
		g.Go(func() error {
			p.syncGuild(ctx, guildID, nick, trend)
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Presence) syncGuild(ctx context.Context, guildID, nick string, trend domain.Trend) {
	me, ok := p.api.SelfMember(guildID)
	if !ok {
		return
	}

	// Missing permissions and rate limits are routine here; stay quiet.
	if p.api.CanManageNicknames(guildID) {
		_ = p.api.SetNickname(ctx, guildID, nick)
	}

	roles := p.api.Roles(guildID)
	green, hasGreen := findRole(roles, p.cfg.GreenRole)
	red, hasRed := findRole(roles, p.cfg.RedRole)

	add, hasAdd, remove, hasRemove := green, hasGreen, red, hasRed
	if trend == domain.TrendDown {
		add, hasAdd, remove, hasRemove = red, hasRed, green, hasGreen
	}

	// The opposite role is only cleared when the trend role exists.
	if !hasAdd {
		return
	}
	if err := p.api.AddRole(ctx, guildID, add.ID); err != nil {
		p.logger.ErrorContext(ctx, "role update error",
			slog.String("guild_id", guildID),
			slog.String("role", add.Name),
			slog.String("op", "add"),
			slog.String("error", err.Error()),
		)
	}
	if hasRemove && me.HasRole(remove.ID) {
		if err := p.api.RemoveRole(ctx, guildID, remove.ID); err != nil {
			p.logger.ErrorContext(ctx, "role update error",
				slog.String("guild_id", guildID),
				slog.String("role", remove.Name),
				slog.String("op", "remove"),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Compile-time interface check.
var _ domain.PresenceSyncer = (*Presence)(nil)
