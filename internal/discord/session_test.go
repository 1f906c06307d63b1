package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestHasGuildPermission(t *testing.T) {
	guild := &discordgo.Guild{
		ID:      "guild",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "guild", Name: "@everyone", Permissions: discordgo.PermissionSendMessages},
			{ID: "nick", Name: "nick", Permissions: discordgo.PermissionManageNicknames},
			{ID: "admin", Name: "admin", Permissions: discordgo.PermissionAdministrator},
		},
	}
	perm := int64(discordgo.PermissionManageNicknames)

	assert.False(t, hasGuildPermission(guild, "bot", nil, perm))
	assert.True(t, hasGuildPermission(guild, "bot", []string{"nick"}, perm))
	assert.True(t, hasGuildPermission(guild, "bot", []string{"admin"}, perm))
	assert.True(t, hasGuildPermission(guild, "owner", nil, perm))

	guild.Roles[0].Permissions |= discordgo.PermissionManageNicknames
	assert.True(t, hasGuildPermission(guild, "bot", nil, perm))
}

func TestMemberHasRole(t *testing.T) {
	m := Member{UserID: "me", RoleIDs: []string{"a", "b"}}
	assert.True(t, m.HasRole("b"))
	assert.False(t, m.HasRole("c"))
}
