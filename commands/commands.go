// Package commands declares the slash commands the bot registers per guild.
package commands

import (
	"github.com/bwmarrin/discordgo"

	"moderation-bot/commands/defs"
)

// All returns every command the bot registers. The list is passed to
// ApplicationCommandBulkOverwrite so removed commands disappear on restart.
func All() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Warn,
		defs.Mute,
		defs.Unmute,
		defs.Deafen,
		defs.Undeafen,
		defs.SelfDeafen,
		defs.SilentUndeafen,
		defs.Kick,
		defs.Ban,
		defs.Unban,
		defs.Punishments,
		defs.BotInfo,
		defs.ServerConfig,
	}
}
