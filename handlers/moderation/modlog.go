package moderation

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"moderation-bot/model"
	"moderation-bot/utils/database/guildconfig"
)

const (
	colorRed     = 0xED4245
	colorGreen   = 0x57F287
	colorBlurple = 0x5865F2
)

// ModLog posts moderation notices: a DM to the target with an origin-channel
// fallback, the origin channel itself, and the guild's configured mod-log
// channel. It implements the timer engine's notifier so expiries are
// announced through the same path as manual actions.
type ModLog struct {
	session *discordgo.Session
	guilds  *guildconfig.Store
	log     zerolog.Logger
}

func NewModLog(session *discordgo.Session, guilds *guildconfig.Store, log zerolog.Logger) *ModLog {
	return &ModLog{session: session, guilds: guilds, log: log}
}

type logEntry struct {
	guildID     string
	actorID     string
	targetID    string
	action      string // past tense, e.g. "muted"
	reason      string
	seconds     int64 // 0 omits the duration fields
	origChannel string
	color       int
	global      bool // false suppresses the guild-wide mod-log post only
}

// PunishmentLifted announces a timer expiry. Self-inflicted punishments stay
// out of the guild-wide mod log but the target and origin channel still hear
// about it.
func (m *ModLog) PunishmentLifted(rec *model.PunishmentRecord) {
	m.post(logEntry{
		guildID:     rec.GuildID,
		actorID:     rec.ActorID,
		targetID:    rec.TargetID,
		action:      "un" + rec.Type.PastParticiple(),
		reason:      "Punishment expired",
		origChannel: rec.OrigChannelID,
		color:       colorGreen,
		global:      !rec.SelfInflicted,
	})
}

func (m *ModLog) post(e logEntry) {
	embed := m.buildEmbed(e)

	sent := false
	if dm, err := m.session.UserChannelCreate(e.targetID); err == nil {
		if _, err := m.session.ChannelMessageSendEmbed(dm.ID, embed); err == nil {
			sent = true
		}
	}
	if !sent && e.origChannel != "" {
		if _, err := m.session.ChannelMessageSend(e.origChannel, "Failed to DM the notice to the user."); err != nil {
			m.log.Warn().Err(err).Str("channel_id", e.origChannel).Msg("failed to report DM failure")
		}
	}

	if e.origChannel != "" {
		if _, err := m.session.ChannelMessageSendEmbed(e.origChannel, embed); err != nil {
			m.log.Warn().Err(err).Str("channel_id", e.origChannel).Msg("failed to post mod-log notice to origin channel")
		}
	}

	cfg, err := m.guilds.Get(e.guildID)
	if err != nil {
		m.log.Error().Err(err).Str("guild_id", e.guildID).Msg("failed to load guild config for mod log")
		return
	}
	if cfg == nil || cfg.ModLogChannelID == "" {
		if e.origChannel != "" {
			m.session.ChannelMessageSend(e.origChannel, "Please configure a mod-log channel with /serverconfig modlog to enable mod-log functionality.")
		}
		return
	}
	// the origin channel already has the embed, avoid a duplicate
	if e.global && cfg.ModLogChannelID != e.origChannel {
		if _, err := m.session.ChannelMessageSendEmbed(cfg.ModLogChannelID, embed); err != nil {
			m.log.Warn().Err(err).Str("channel_id", cfg.ModLogChannelID).Msg("failed to post to mod-log channel")
		}
	}
}

func (m *ModLog) buildEmbed(e logEntry) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{
			Name:  capitalize(e.action) + " user",
			Value: fmt.Sprintf("<@%s> (%s)", e.targetID, e.targetID),
		},
		{
			Name:  "Requested by",
			Value: fmt.Sprintf("<@%s> (%s)", e.actorID, e.actorID),
		},
		{
			Name:  "Reason",
			Value: orDefault(e.reason, "No reason provided"),
		},
	}
	if e.seconds > 0 {
		fields = append(fields,
			&discordgo.MessageEmbedField{
				Name:   "Duration",
				Value:  fmt.Sprintf("%d seconds", e.seconds),
				Inline: true,
			},
			&discordgo.MessageEmbedField{
				Name:   "Expiration",
				Value:  fmt.Sprintf("<t:%d:R>", time.Now().Unix()+e.seconds),
				Inline: true,
			},
		)
	}
	return &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("User %s!", e.action),
		Color:     e.color,
		Fields:    fields,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
