package moderation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
	"moderation-bot/utils"
)

// ServerConfig dispatches the serverconfig subcommands.
func (h *Handler) ServerConfig(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "show":
		h.showConfig(s, i)
	case "modlog":
		channel := sub.Options[0].ChannelValue(s)
		h.setConfig(s, i, "Mod-log channel set to <#"+channel.ID+">.", func(cfg *model.GuildConfig) {
			cfg.ModLogChannelID = channel.ID
		})
	case "memberlog":
		channel := sub.Options[0].ChannelValue(s)
		h.setConfig(s, i, "Member-log channel set to <#"+channel.ID+">.", func(cfg *model.GuildConfig) {
			cfg.MemberLogChannelID = channel.ID
		})
	case "memberrole":
		role := sub.Options[0].RoleValue(s, i.GuildID)
		h.setConfig(s, i, "Member role set to <@&"+role.ID+">.", func(cfg *model.GuildConfig) {
			cfg.MemberRoleID = role.ID
		})
	case "unset":
		h.unsetConfig(s, i, sub.Options[0].StringValue())
	}
}

func (h *Handler) showConfig(s *discordgo.Session, i *discordgo.InteractionCreate) {
	cfg, err := h.guilds.Ensure(i.GuildID, h.guildName(s, i.GuildID))
	if err != nil {
		h.log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to load guild config")
		utils.SendErrorResponse(s, i, "Failed to load the server configuration.")
		return
	}

	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Server-specific bot settings for %s", cfg.GuildName),
		Description: "To change these settings, see /serverconfig.",
		Color:       colorBlurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Mod log", Value: channelEnt(cfg.ModLogChannelID), Inline: true},
			{Name: "Member log", Value: channelEnt(cfg.MemberLogChannelID), Inline: true},
			{Name: "Member role", Value: roleEnt(cfg.MemberRoleID), Inline: true},
		},
	})
}

func (h *Handler) setConfig(s *discordgo.Session, i *discordgo.InteractionCreate, confirmation string, mutate func(cfg *model.GuildConfig)) {
	cfg, err := h.guilds.Ensure(i.GuildID, h.guildName(s, i.GuildID))
	if err == nil {
		// copy before mutating, the store hands out its cached value
		updated := *cfg
		mutate(&updated)
		err = h.guilds.Update(&updated)
	}
	if err != nil {
		h.log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to update guild config")
		utils.SendErrorResponse(s, i, "Failed to update the server configuration.")
		return
	}
	utils.SendPublicResponse(s, i, confirmation)
}

func (h *Handler) unsetConfig(s *discordgo.Session, i *discordgo.InteractionCreate, setting string) {
	mutate, ok := map[string]func(cfg *model.GuildConfig){
		"modlog":     func(cfg *model.GuildConfig) { cfg.ModLogChannelID = "" },
		"memberlog":  func(cfg *model.GuildConfig) { cfg.MemberLogChannelID = "" },
		"memberrole": func(cfg *model.GuildConfig) { cfg.MemberRoleID = "" },
	}[setting]
	if !ok {
		utils.SendErrorResponse(s, i, "That server setting does not exist.")
		return
	}
	h.setConfig(s, i, fmt.Sprintf("Unset configuration for setting `%s`.", setting), mutate)
}

func (h *Handler) guildName(s *discordgo.Session, guildID string) string {
	if g, err := s.State.Guild(guildID); err == nil && g.Name != "" {
		return g.Name
	}
	if g, err := s.Guild(guildID); err == nil {
		return g.Name
	}
	return guildID
}

func channelEnt(id string) string {
	if id == "" {
		return "Unset"
	}
	return "<#" + id + ">"
}

func roleEnt(id string) string {
	if id == "" {
		return "Unset"
	}
	return "<@&" + id + ">"
}
