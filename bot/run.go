package bot

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"moderation-bot/commands"
)

// Run opens the gateway session, restores the surviving punishment timers,
// registers the slash commands, and blocks until the process is signalled.
// Restoration runs before command registration so a fresh punishment command
// cannot race the restore pass for the same member.
func (b *Bot) Run() error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway session: %w", err)
	}

	if err := b.Engine.RestoreAll(); err != nil {
		return fmt.Errorf("failed to restore punishment timers: %w", err)
	}

	b.registerCommands()

	b.log.Info().Msg("bot is running, press ctrl+c to exit")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc
	return nil
}

func (b *Bot) registerCommands() {
	guilds, err := b.Session.UserGuilds(200, "", "", false)
	if err != nil {
		b.log.Error().Err(err).Msg("failed to list guilds for command registration")
		return
	}
	cmds := commands.All()
	for _, guild := range guilds {
		if _, err := b.Session.ApplicationCommandBulkOverwrite(b.Config.AppID, guild.ID, cmds); err != nil {
			b.log.Error().Err(err).Str("guild_id", guild.ID).Msg("failed to register commands")
			continue
		}
		b.log.Info().Str("guild_id", guild.ID).Int("count", len(cmds)).Msg("registered commands")
	}
}
