package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"moderation-bot/bot"
	"moderation-bot/config"
	"moderation-bot/handlers"
	"moderation-bot/utils/database"
	"moderation-bot/utils/database/guildconfig"
	"moderation-bot/utils/database/punishments"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, staying on info")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create data directory")
	}
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := punishments.CreateTables(db); err != nil {
		log.Fatal().Err(err).Msg("failed to create punishment tables")
	}
	if err := guildconfig.CreateTables(db); err != nil {
		log.Fatal().Err(err).Msg("failed to create guild config tables")
	}

	guilds := guildconfig.NewStore(db)
	b, err := bot.New(cfg, db, guilds, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	handlers.Register(b)

	defer b.Close()
	if err := b.Run(); err != nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}
}
