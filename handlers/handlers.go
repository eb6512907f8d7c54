// Package handlers registers the gateway event handlers and maps slash
// commands to their implementations.
package handlers

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"moderation-bot/bot"
	"moderation-bot/handlers/moderation"
)

func Register(b *bot.Bot) {
	mod := moderation.NewHandler(b.Engine, b.Guilds, b.ModLog, log.Logger)
	b.CommandHandlers = commandHandlers(b, mod)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot, mod *moderation.Handler) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"warn":           mod.Warn,
		"mute":           mod.Mute,
		"unmute":         mod.Unmute,
		"deafen":         mod.Deafen,
		"undeafen":       mod.Undeafen,
		"selfdeafen":     mod.SelfDeafen,
		"silentundeafen": mod.SilentUndeafen,
		"kick":           mod.Kick,
		"ban":            mod.Ban,
		"unban":          mod.Unban,
		"punishments":    mod.Punishments,
		"serverconfig":   mod.ServerConfig,
		"botinfo": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().
			Str("username", s.State.User.Username).
			Int("guilds", len(r.Guilds)).
			Msg("logged in")
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		HandleMemberJoin(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		HandleMemberLeave(s, m, b)
	})
}
