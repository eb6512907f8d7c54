package punishments

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CreateTables ensures all punishment-related tables exist.
func CreateTables(db *sqlx.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS mutes (
		    member_id TEXT NOT NULL,
		    guild_id TEXT NOT NULL,
		    PRIMARY KEY (member_id, guild_id)
		);`,
		`CREATE TABLE IF NOT EXISTS deafens (
		    member_id TEXT NOT NULL,
		    guild_id TEXT NOT NULL,
		    self_inflicted INTEGER NOT NULL DEFAULT 0,
		    PRIMARY KEY (member_id, guild_id)
		);`,
		`CREATE TABLE IF NOT EXISTS punishment_timers (
		    id INTEGER PRIMARY KEY AUTOINCREMENT,
		    guild_id TEXT NOT NULL,
		    actor_id TEXT NOT NULL,
		    target_id TEXT NOT NULL,
		    orig_channel_id TEXT NOT NULL DEFAULT '',
		    type INTEGER NOT NULL,
		    reason TEXT NOT NULL DEFAULT '',
		    target_ts INTEGER NOT NULL,
		    self_inflicted INTEGER NOT NULL DEFAULT 0
		);`,
	}

	for _, schema := range schemas {
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("failed to create punishment tables: %w", err)
		}
	}
	return nil
}
