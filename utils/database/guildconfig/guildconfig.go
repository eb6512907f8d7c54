// Package guildconfig provides cached access to per-guild settings.
package guildconfig

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"moderation-bot/configcache"
	"moderation-bot/model"
)

// GuildFilter selects a guild_config row by guild id.
type GuildFilter struct {
	GuildID string
}

func (f GuildFilter) Fields() map[string]string {
	return map[string]string{"guild_id": f.GuildID}
}

// CreateTables ensures the guild_config table exists.
func CreateTables(db *sqlx.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS guild_config (
	    guild_id TEXT PRIMARY KEY,
	    guild_name TEXT NOT NULL DEFAULT '',
	    mod_log_channel_id TEXT NOT NULL DEFAULT '',
	    member_log_channel_id TEXT NOT NULL DEFAULT '',
	    member_role_id TEXT NOT NULL DEFAULT ''
	);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create guild_config table: %w", err)
	}
	return nil
}

// Store is a read-through cached view over guild_config rows. All guild
// configuration consumers share one Store by reference.
type Store struct {
	db    *sqlx.DB
	cache *configcache.Cache[GuildFilter, model.GuildConfig]
}

func NewStore(db *sqlx.DB) *Store {
	s := &Store{db: db}
	s.cache = configcache.New(s.selectOne, s.selectAll)
	return s
}

func (s *Store) selectOne(f GuildFilter) (*model.GuildConfig, error) {
	var cfg model.GuildConfig
	err := s.db.Get(&cfg, "SELECT * FROM guild_config WHERE guild_id = ?", f.GuildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config for guild %s: %w", f.GuildID, err)
	}
	return &cfg, nil
}

func (s *Store) selectAll(f GuildFilter) ([]model.GuildConfig, error) {
	var cfgs []model.GuildConfig
	if err := s.db.Select(&cfgs, "SELECT * FROM guild_config WHERE guild_id = ?", f.GuildID); err != nil {
		return nil, fmt.Errorf("failed to list configs for guild %s: %w", f.GuildID, err)
	}
	return cfgs, nil
}

// Get returns the cached config row for a guild, or nil if none exists.
func (s *Store) Get(guildID string) (*model.GuildConfig, error) {
	return s.cache.QueryOne(GuildFilter{GuildID: guildID})
}

// Ensure returns the config row for a guild, inserting defaults first if the
// guild has never been configured.
func (s *Store) Ensure(guildID, guildName string) (*model.GuildConfig, error) {
	cfg, err := s.Get(guildID)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		return cfg, nil
	}

	cfg = &model.GuildConfig{GuildID: guildID, GuildName: guildName}
	query := `INSERT INTO guild_config (guild_id, guild_name, mod_log_channel_id, member_log_channel_id, member_role_id)
			  VALUES (:guild_id, :guild_name, :mod_log_channel_id, :member_log_channel_id, :member_role_id)
			  ON CONFLICT DO NOTHING`
	if _, err := s.db.NamedExec(query, cfg); err != nil {
		return nil, fmt.Errorf("failed to insert default config for guild %s: %w", guildID, err)
	}
	s.cache.Invalidate(GuildFilter{GuildID: guildID})
	return s.Get(guildID)
}

// Update upserts a config row and invalidates the cached entry.
func (s *Store) Update(cfg *model.GuildConfig) error {
	query := `INSERT INTO guild_config (guild_id, guild_name, mod_log_channel_id, member_log_channel_id, member_role_id)
			  VALUES (:guild_id, :guild_name, :mod_log_channel_id, :member_log_channel_id, :member_role_id)
			  ON CONFLICT (guild_id) DO UPDATE SET
			      guild_name = excluded.guild_name,
			      mod_log_channel_id = excluded.mod_log_channel_id,
			      member_log_channel_id = excluded.member_log_channel_id,
			      member_role_id = excluded.member_role_id`
	if _, err := s.db.NamedExec(query, cfg); err != nil {
		return fmt.Errorf("failed to update config for guild %s: %w", cfg.GuildID, err)
	}
	s.cache.Invalidate(GuildFilter{GuildID: cfg.GuildID})
	return nil
}
