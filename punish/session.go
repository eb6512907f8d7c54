package punish

import (
	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

// Session is the subset of the discordgo API the punishment subsystem
// touches. *discordgo.Session satisfies it; tests substitute a fake.
type Session interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
	ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, options ...discordgo.RequestOption) error
	ChannelPermissionDelete(channelID, targetID string, options ...discordgo.RequestOption) error
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

// Notifier receives punishment lifecycle notifications. The moderation
// command surface implements it with mod-log embeds; the engine only
// reports facts and never formats messages itself.
type Notifier interface {
	// PunishmentLifted fires after a countdown expires and the reversal has
	// been applied. A self-inflicted record suppresses the guild-wide
	// mod-log notice but not origin-channel delivery.
	PunishmentLifted(rec *model.PunishmentRecord)
}
