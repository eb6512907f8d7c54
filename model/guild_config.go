package model

// GuildConfig stores guild specific general configuration.
type GuildConfig struct {
	GuildID            string `db:"guild_id"`
	GuildName          string `db:"guild_name"`
	ModLogChannelID    string `db:"mod_log_channel_id"`
	MemberLogChannelID string `db:"member_log_channel_id"`
	MemberRoleID       string `db:"member_role_id"`
}
