// Package moderation implements the moderation slash commands: timed mutes
// and deafens backed by the punishment timer engine, direct actions (warn,
// kick, ban), and the server configuration commands.
package moderation

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"moderation-bot/model"
	"moderation-bot/punish"
	"moderation-bot/utils"
	"moderation-bot/utils/database/guildconfig"
)

type Handler struct {
	engine *punish.Engine
	guilds *guildconfig.Store
	modlog *ModLog
	log    zerolog.Logger
}

func NewHandler(engine *punish.Engine, guilds *guildconfig.Store, modlog *ModLog, log zerolog.Logger) *Handler {
	return &Handler{engine: engine, guilds: guilds, modlog: modlog, log: log}
}

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if o, ok := opts[name]; ok {
		return o.StringValue()
	}
	return ""
}

// splitReason pulls the leading duration component out of a raw reason
// string, e.g. "1h15m spamming" becomes (4500, "spamming").
func splitReason(raw string) (seconds int64, reason string) {
	seconds = utils.HmToSeconds(raw)
	reason = utils.StripHm(raw)
	if reason == "" {
		reason = "No reason provided"
	}
	return seconds, reason
}

// beginTimed is the shared body of the mute and deafen commands.
func (h *Handler) beginTimed(s *discordgo.Session, i *discordgo.InteractionCreate, t model.PunishmentType, selfInflicted bool, targetID string) {
	opts := optionMap(i)
	seconds, reason := splitReason(stringOption(opts, "reason"))

	if selfInflicted && seconds == 0 {
		utils.SendErrorResponse(s, i, "You need to specify a duration!")
		return
	}

	fresh, err := h.engine.Begin(punish.BeginRequest{
		GuildID:       i.GuildID,
		TargetID:      targetID,
		ActorID:       i.Member.User.ID,
		OrigChannelID: i.ChannelID,
		Type:          t,
		Reason:        reason,
		Seconds:       seconds,
		SelfInflicted: selfInflicted,
	})
	if err != nil {
		h.log.Error().Err(err).
			Str("guild_id", i.GuildID).
			Str("target_id", targetID).
			Str("type", t.String()).
			Msg("failed to begin punishment")
		utils.SendErrorResponse(s, i, fmt.Sprintf("Failed to %s the member.", t.String()))
		return
	}

	if fresh {
		utils.SendPublicResponse(s, i, fmt.Sprintf("%s <@%s>.", capitalize(t.PastParticiple()), targetID))
	} else {
		utils.SendPublicResponse(s, i, fmt.Sprintf("<@%s> was already %s, the duration has been updated.", targetID, t.PastParticiple()))
	}
	h.modlog.post(logEntry{
		guildID:     i.GuildID,
		actorID:     i.Member.User.ID,
		targetID:    targetID,
		action:      t.PastParticiple(),
		reason:      reason,
		seconds:     seconds,
		origChannel: i.ChannelID,
		color:       colorRed,
		global:      !selfInflicted,
	})
}

// endTimed is the shared body of the unmute and undeafen commands. silent
// keeps the lift out of the guild-wide mod log.
func (h *Handler) endTimed(s *discordgo.Session, i *discordgo.InteractionCreate, t model.PunishmentType, silent bool) {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	reason := stringOption(opts, "reason")

	lifted, selfInflicted, err := h.engine.End(i.GuildID, target.ID, t)
	if err != nil {
		h.log.Error().Err(err).
			Str("guild_id", i.GuildID).
			Str("target_id", target.ID).
			Str("type", t.String()).
			Msg("failed to end punishment")
		utils.SendErrorResponse(s, i, fmt.Sprintf("Failed to un%s the member.", t.String()))
		return
	}
	if !lifted {
		utils.SendErrorResponse(s, i, fmt.Sprintf("Member is not %s!", t.PastParticiple()))
		return
	}

	utils.SendPublicResponse(s, i, fmt.Sprintf("Un%s <@%s>.", t.PastParticiple(), target.ID))
	h.modlog.post(logEntry{
		guildID:     i.GuildID,
		actorID:     i.Member.User.ID,
		targetID:    target.ID,
		action:      "un" + t.PastParticiple(),
		reason:      orDefault(reason, "No reason provided"),
		origChannel: i.ChannelID,
		color:       colorGreen,
		global:      !silent && !selfInflicted,
	})
}

func (h *Handler) Mute(s *discordgo.Session, i *discordgo.InteractionCreate) {
	target := optionMap(i)["user"].UserValue(s)
	h.beginTimed(s, i, model.PunishmentMute, false, target.ID)
}

func (h *Handler) Unmute(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.endTimed(s, i, model.PunishmentMute, false)
}

func (h *Handler) Deafen(s *discordgo.Session, i *discordgo.InteractionCreate) {
	target := optionMap(i)["user"].UserValue(s)
	h.beginTimed(s, i, model.PunishmentDeafen, false, target.ID)
}

func (h *Handler) Undeafen(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.endTimed(s, i, model.PunishmentDeafen, false)
}

// SelfDeafen deafens the invoker for the requested duration, useful as a
// study tool. The lift stays out of the guild-wide mod log.
func (h *Handler) SelfDeafen(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.beginTimed(s, i, model.PunishmentDeafen, true, i.Member.User.ID)
}

func (h *Handler) SilentUndeafen(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.endTimed(s, i, model.PunishmentDeafen, true)
}

func (h *Handler) Warn(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	reason := stringOption(opts, "reason")

	utils.SendPublicResponse(s, i, fmt.Sprintf("Warned <@%s>.", target.ID))
	h.modlog.post(logEntry{
		guildID:     i.GuildID,
		actorID:     i.Member.User.ID,
		targetID:    target.ID,
		action:      "warned",
		reason:      utils.StripHm(reason),
		origChannel: i.ChannelID,
		color:       colorRed,
		global:      true,
	})
}

func (h *Handler) Kick(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	reason := orDefault(stringOption(opts, "reason"), "No reason provided")

	h.modlog.post(logEntry{
		guildID:     i.GuildID,
		actorID:     i.Member.User.ID,
		targetID:    target.ID,
		action:      "kicked",
		reason:      reason,
		origChannel: i.ChannelID,
		color:       colorRed,
		global:      true,
	})
	if err := s.GuildMemberDeleteWithReason(i.GuildID, target.ID, reason); err != nil {
		h.log.Error().Err(err).Str("target_id", target.ID).Msg("failed to kick member")
		utils.SendErrorResponse(s, i, "Failed to kick the member.")
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("Kicked <@%s>.", target.ID))
}

func (h *Handler) Ban(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	reason := orDefault(stringOption(opts, "reason"), "No reason provided")

	h.modlog.post(logEntry{
		guildID:     i.GuildID,
		actorID:     i.Member.User.ID,
		targetID:    target.ID,
		action:      "banned",
		reason:      reason,
		origChannel: i.ChannelID,
		color:       colorRed,
		global:      true,
	})
	if err := s.GuildBanCreateWithReason(i.GuildID, target.ID, reason, 0); err != nil {
		h.log.Error().Err(err).Str("target_id", target.ID).Msg("failed to ban user")
		utils.SendErrorResponse(s, i, "Failed to ban the user.")
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("Banned <@%s>.", target.ID))
}

func (h *Handler) Unban(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	reason := orDefault(stringOption(opts, "reason"), "No reason provided")

	if err := s.GuildBanDelete(i.GuildID, target.ID); err != nil {
		h.log.Error().Err(err).Str("target_id", target.ID).Msg("failed to unban user")
		utils.SendErrorResponse(s, i, "Failed to unban the user.")
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("Unbanned <@%s>.", target.ID))
	h.modlog.post(logEntry{
		guildID:     i.GuildID,
		actorID:     i.Member.User.ID,
		targetID:    target.ID,
		action:      "unbanned",
		reason:      reason,
		origChannel: i.ChannelID,
		color:       colorGreen,
		global:      true,
	})
}

// Punishments lists the active timed punishments in the guild, soonest
// expiry first. The response is deferred, the listing can take a moment on
// a busy guild.
func (h *Handler) Punishments(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		h.log.Error().Err(err).Msg("failed to defer punishments response")
		return
	}

	records, err := h.engine.ListActive(i.GuildID)
	if err != nil {
		h.log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to list punishments")
		utils.SendFollowUpError(s, i.Interaction, "Failed to list the active punishments.")
		return
	}
	if len(records) == 0 {
		utils.SendFollowUp(s, i.Interaction, "No active timed punishments.")
		return
	}

	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "**%s** <@%s> expires <t:%d:R>\nReason: %s\n\n",
			capitalize(rec.Type.String()), rec.TargetID, rec.TargetTS, orDefault(rec.Reason, "No reason provided"))
	}
	utils.SendFollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
		Title:       "Active punishments",
		Color:       colorBlurple,
		Description: b.String(),
	})
}
