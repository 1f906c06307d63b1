// Package discord reflects tracker state in Discord: the bot's nickname and
// trend roles in every guild it belongs to, plus the "!" chat commands.
package discord

import (
	"context"
	"slices"
)

// Member is the bot's own membership in one guild.
type Member struct {
	UserID  string
	RoleIDs []string
}

// HasRole reports whether the member holds roleID.
func (m Member) HasRole(roleID string) bool {
	return slices.Contains(m.RoleIDs, roleID)
}

// Role is a guild role.
type Role struct {
	ID   string
	Name string
}

// GuildAPI is the slice of the Discord API the presence updater needs. Reads
// come from the gateway cache; writes are REST calls.
type GuildAPI interface {
	GuildIDs() []string
	SelfMember(guildID string) (Member, bool)
	CanManageNicknames(guildID string) bool
	Roles(guildID string) []Role
	SetNickname(ctx context.Context, guildID, nickname string) error
	AddRole(ctx context.Context, guildID, roleID string) error
	RemoveRole(ctx context.Context, guildID, roleID string) error
}

// findRole returns the first role named exactly name.
func findRole(roles []Role, name string) (Role, bool) {
	for _, r := range roles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}
