package handlers

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"moderation-bot/bot"
	"moderation-bot/punish"
	"moderation-bot/utils/database/punishments"
)

// HandleMemberJoin reapplies the permission overlay for members who rejoin
// while still punished (leaving the guild drops every channel overwrite),
// then posts a join notice to the member-log channel.
func HandleMemberJoin(s *discordgo.Session, m *discordgo.GuildMemberAdd, b *bot.Bot) {
	if mute, err := punishments.GetMute(b.DB, m.GuildID, m.User.ID); err != nil {
		log.Error().Err(err).Str("member_id", m.User.ID).Msg("failed to check mute on rejoin")
	} else if mute != nil {
		if err := b.Overlay.Apply(m.GuildID, m.User.ID, punish.MuteDenyBits); err != nil {
			log.Error().Err(err).Str("member_id", m.User.ID).Msg("failed to reapply mute overlay")
		}
	}
	if deafen, err := punishments.GetDeafen(b.DB, m.GuildID, m.User.ID); err != nil {
		log.Error().Err(err).Str("member_id", m.User.ID).Msg("failed to check deafen on rejoin")
	} else if deafen != nil {
		if err := b.Overlay.Apply(m.GuildID, m.User.ID, punish.DeafenDenyBits); err != nil {
			log.Error().Err(err).Str("member_id", m.User.ID).Msg("failed to reapply deafen overlay")
		}
	}

	postMemberNotice(s, b, m.GuildID, "Member Joined", 0x00FF00, m.User)
}

// HandleMemberLeave posts a leave notice to the member-log channel.
func HandleMemberLeave(s *discordgo.Session, m *discordgo.GuildMemberRemove, b *bot.Bot) {
	postMemberNotice(s, b, m.GuildID, "Member Left", 0xFF0000, m.User)
}

func postMemberNotice(s *discordgo.Session, b *bot.Bot, guildID, title string, color int, user *discordgo.User) {
	cfg, err := b.Guilds.Get(guildID)
	if err != nil {
		log.Error().Err(err).Str("guild_id", guildID).Msg("failed to load guild config for member log")
		return
	}
	if cfg == nil || cfg.MemberLogChannelID == "" {
		return
	}

	embed := &discordgo.MessageEmbed{
		Color:       color,
		Description: fmt.Sprintf("<@%s>\n%s (%s)", user.ID, user.Username, user.ID),
		Author: &discordgo.MessageEmbedAuthor{
			Name:    title,
			IconURL: user.AvatarURL(""),
		},
	}
	if _, err := s.ChannelMessageSendEmbed(cfg.MemberLogChannelID, embed); err != nil {
		log.Warn().Err(err).Str("channel_id", cfg.MemberLogChannelID).Msg("failed to post member notice")
	}
}
