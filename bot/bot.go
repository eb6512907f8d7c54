// Package bot owns the gateway session and wires the punishment subsystem
// together: overlay applier, timer engine, mod log, and guild config store.
package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"moderation-bot/handlers/moderation"
	"moderation-bot/model"
	"moderation-bot/punish"
	"moderation-bot/utils/database/guildconfig"
)

type Bot struct {
	Session *discordgo.Session
	Config  *model.Config
	DB      *sqlx.DB
	Engine  *punish.Engine
	Overlay *punish.Overlay
	ModLog  *moderation.ModLog
	Guilds  *guildconfig.Store

	CommandHandlers map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	log zerolog.Logger
}

func New(cfg *model.Config, db *sqlx.DB, guilds *guildconfig.Store, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildMessages

	overlay := punish.NewOverlay(dg, cfg.AppID, log)
	modlog := moderation.NewModLog(dg, guilds, log)
	engine := punish.NewEngine(db, dg, overlay, modlog, log)

	return &Bot{
		Session: dg,
		Config:  cfg,
		DB:      db,
		Engine:  engine,
		Overlay: overlay,
		ModLog:  modlog,
		Guilds:  guilds,
		log:     log,
	}, nil
}

func (b *Bot) Close() {
	b.log.Info().Msg("gracefully shutting down")
	if err := b.Session.Close(); err != nil {
		b.log.Error().Err(err).Msg("failed to close session")
	}
}
