package discord

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bwmarrin/discordgo"
)

// Intents requested from the gateway: guild cache, guild messages, the
// bot's own member record and message text for commands.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsMessageContent

// Session wraps a discordgo session and implements GuildAPI on top of its
// state cache.
type Session struct {
	dg     *discordgo.Session
	logger *slog.Logger
}

// NewSession creates a session for the bot token. No connection is made
// until Open.
func NewSession(token string, logger *slog.Logger) (*Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: new session: %w", err)
	}
	dg.Identify.Intents = Intents
	dg.StateEnabled = true

	return &Session{
		dg:     dg,
		logger: logger.With(slog.String("component", "discord")),
	}, nil
}

// OnReady runs fn once, after the first Ready event.
func (s *Session) OnReady(ctx context.Context, fn func(ctx context.Context)) {
	s.dg.AddHandlerOnce(func(_ *discordgo.Session, r *discordgo.Ready) {
		s.logger.InfoContext(ctx, "logged in",
			slog.String("user", r.User.String()),
			slog.Int("guilds", len(r.Guilds)),
		)
		fn(ctx)
	})
}

// HandleCommands routes every MessageCreate event through cmds and replies
// in the same channel.
func (s *Session) HandleCommands(ctx context.Context, cmds *Commands) {
	s.dg.AddHandler(func(dg *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil {
			return
		}
		reply, ok := cmds.Handle(ctx, Message{
			AuthorIsBot: m.Author.Bot,
			Content:     m.Content,
			GuildID:     m.GuildID,
			AuthorID:    m.Author.ID,
		})
		if !ok {
			return
		}
		if _, err := dg.ChannelMessageSendReply(m.ChannelID, reply, m.Reference(), discordgo.WithContext(ctx)); err != nil {
			s.logger.ErrorContext(ctx, "reply failed",
				slog.String("channel_id", m.ChannelID),
				slog.String("error", err.Error()),
			)
		}
	})
}

// Open connects to the gateway. It fails when the token is rejected.
func (s *Session) Open() error {
	if err := s.dg.Open(); err != nil {
		return fmt.Errorf("discord: open: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (s *Session) Close() error {
	return s.dg.Close()
}

func (s *Session) selfID() string {
	s.dg.State.RLock()
	defer s.dg.State.RUnlock()
	if s.dg.State.User == nil {
		return ""
	}
	return s.dg.State.User.ID
}

// GuildIDs lists the guilds in the state cache.
func (s *Session) GuildIDs() []string {
	s.dg.State.RLock()
	defer s.dg.State.RUnlock()
	ids := make([]string, 0, len(s.dg.State.Guilds))
	for _, g := range s.dg.State.Guilds {
		ids = append(ids, g.ID)
	}
	return ids
}

// SelfMember returns the bot's cached member record in guildID.
func (s *Session) SelfMember(guildID string) (Member, bool) {
	self := s.selfID()
	if self == "" {
		return Member{}, false
	}
	m, err := s.dg.State.Member(guildID, self)
	if err != nil {
		return Member{}, false
	}

	s.dg.State.RLock()
	defer s.dg.State.RUnlock()
	return Member{UserID: self, RoleIDs: slices.Clone(m.Roles)}, true
}

// CanManageNicknames reports whether the bot holds Manage Nicknames in
// guildID, directly, through Administrator, or as the owner.
func (s *Session) CanManageNicknames(guildID string) bool {
	self := s.selfID()
	g, err := s.dg.State.Guild(guildID)
	if err != nil {
		return false
	}
	m, err := s.dg.State.Member(guildID, self)
	if err != nil {
		return false
	}

	s.dg.State.RLock()
	defer s.dg.State.RUnlock()
	return hasGuildPermission(g, self, m.Roles, discordgo.PermissionManageNicknames)
}

// Roles lists the cached roles of guildID.
func (s *Session) Roles(guildID string) []Role {
	g, err := s.dg.State.Guild(guildID)
	if err != nil {
		return nil
	}

	s.dg.State.RLock()
	defer s.dg.State.RUnlock()
	out := make([]Role, 0, len(g.Roles))
	for _, r := range g.Roles {
		out = append(out, Role{ID: r.ID, Name: r.Name})
	}
	return out
}

// SetNickname changes the bot's own nickname in guildID.
func (s *Session) SetNickname(ctx context.Context, guildID, nickname string) error {
	if err := s.dg.GuildMemberNickname(guildID, "@me", nickname, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: set nickname in %s: %w", guildID, err)
	}
	return nil
}

// AddRole grants roleID to the bot in guildID.
func (s *Session) AddRole(ctx context.Context, guildID, roleID string) error {
	if err := s.dg.GuildMemberRoleAdd(guildID, s.selfID(), roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: add role %s in %s: %w", roleID, guildID, err)
	}
	return nil
}

// RemoveRole revokes roleID from the bot in guildID.
func (s *Session) RemoveRole(ctx context.Context, guildID, roleID string) error {
	if err := s.dg.GuildMemberRoleRemove(guildID, s.selfID(), roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: remove role %s in %s: %w", roleID, guildID, err)
	}
	return nil
}

// hasGuildPermission folds the @everyone role and the member's roles into a
// guild-level permission set. Channel overwrites are not considered.
func hasGuildPermission(g *discordgo.Guild, userID string, memberRoles []string, perm int64) bool {
	if g.OwnerID != "" && g.OwnerID == userID {
		return true
	}
	var perms int64
	for _, r := range g.Roles {
		if r.ID == g.ID || slices.Contains(memberRoles, r.ID) {
			perms |= r.Permissions
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&perm != 0
}

// Compile-time interface check.
var _ GuildAPI = (*Session)(nil)
