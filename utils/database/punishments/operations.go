package punishments

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"moderation-bot/model"
)

// ErrEmptyFilter is returned when a delete is attempted with no filter at
// all; blanket deletes of the timer table are always a caller bug.
var ErrEmptyFilter = errors.New("timer filter matches everything; refusing to delete")

// TimerFilter selects punishment timer rows. Zero-valued fields are ignored.
type TimerFilter struct {
	ID       int64
	GuildID  string
	TargetID string
	Type     model.PunishmentType
}

func (f TimerFilter) where() (string, []interface{}, error) {
	var clauses []string
	var args []interface{}
	if f.ID != 0 {
		clauses = append(clauses, "id = ?")
		args = append(args, f.ID)
	}
	if f.GuildID != "" {
		clauses = append(clauses, "guild_id = ?")
		args = append(args, f.GuildID)
	}
	if f.TargetID != "" {
		clauses = append(clauses, "target_id = ?")
		args = append(args, f.TargetID)
	}
	if f.Type != 0 {
		clauses = append(clauses, "type = ?")
		args = append(args, f.Type)
	}
	if len(clauses) == 0 {
		return "", nil, ErrEmptyFilter
	}
	return strings.Join(clauses, " AND "), args, nil
}

// InsertTimer adds a new punishment timer record and returns the new record's ID.
// It never overwrites an existing record; callers delete stale records first.
func InsertTimer(db *sqlx.DB, record *model.PunishmentRecord) (int64, error) {
	query := `INSERT INTO punishment_timers (guild_id, actor_id, target_id, orig_channel_id, type, reason, target_ts, self_inflicted)
			  VALUES (:guild_id, :actor_id, :target_id, :orig_channel_id, :type, :reason, :target_ts, :self_inflicted)`

	result, err := db.NamedExec(query, record)
	if err != nil {
		return 0, fmt.Errorf("failed to insert punishment timer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// DeleteTimers deletes all timer rows matching the filter.
func DeleteTimers(db *sqlx.DB, filter TimerFilter) error {
	where, args, err := filter.where()
	if err != nil {
		return err
	}
	if _, err := db.Exec("DELETE FROM punishment_timers WHERE "+where, args...); err != nil {
		return fmt.Errorf("failed to delete punishment timers: %w", err)
	}
	return nil
}

// ListTimers retrieves every surviving timer record. Used only for startup
// reconciliation; active-punishment counts stay small.
func ListTimers(db *sqlx.DB) ([]model.PunishmentRecord, error) {
	var records []model.PunishmentRecord
	if err := db.Select(&records, "SELECT * FROM punishment_timers"); err != nil {
		return nil, fmt.Errorf("failed to list punishment timers: %w", err)
	}
	return records, nil
}

// ListGuildTimers retrieves the active timer records for one guild.
func ListGuildTimers(db *sqlx.DB, guildID string) ([]model.PunishmentRecord, error) {
	var records []model.PunishmentRecord
	err := db.Select(&records, "SELECT * FROM punishment_timers WHERE guild_id = ? ORDER BY target_ts", guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list punishment timers for guild %s: %w", guildID, err)
	}
	return records, nil
}

// AddMute marks a member as muted. Inserting an already-muted member is a no-op.
func AddMute(db *sqlx.DB, m model.Mute) error {
	query := `INSERT INTO mutes (member_id, guild_id) VALUES (:member_id, :guild_id)
			  ON CONFLICT DO NOTHING`
	if _, err := db.NamedExec(query, m); err != nil {
		return fmt.Errorf("failed to insert mute for member %s: %w", m.MemberID, err)
	}
	return nil
}

// GetMute returns the mute row for a member, or nil if the member is not muted.
func GetMute(db *sqlx.DB, guildID, memberID string) (*model.Mute, error) {
	var m model.Mute
	err := db.Get(&m, "SELECT * FROM mutes WHERE guild_id = ? AND member_id = ?", guildID, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mute for member %s in guild %s: %w", memberID, guildID, err)
	}
	return &m, nil
}

// DeleteMute removes the mute row for a member.
func DeleteMute(db *sqlx.DB, guildID, memberID string) error {
	_, err := db.Exec("DELETE FROM mutes WHERE guild_id = ? AND member_id = ?", guildID, memberID)
	if err != nil {
		return fmt.Errorf("failed to delete mute for member %s in guild %s: %w", memberID, guildID, err)
	}
	return nil
}

// AddDeafen marks a member as deafened. Inserting an already-deafened member is a no-op.
func AddDeafen(db *sqlx.DB, d model.Deafen) error {
	query := `INSERT INTO deafens (member_id, guild_id, self_inflicted) VALUES (:member_id, :guild_id, :self_inflicted)
			  ON CONFLICT DO NOTHING`
	if _, err := db.NamedExec(query, d); err != nil {
		return fmt.Errorf("failed to insert deafen for member %s: %w", d.MemberID, err)
	}
	return nil
}

// GetDeafen returns the deafen row for a member, or nil if the member is not deafened.
func GetDeafen(db *sqlx.DB, guildID, memberID string) (*model.Deafen, error) {
	var d model.Deafen
	err := db.Get(&d, "SELECT * FROM deafens WHERE guild_id = ? AND member_id = ?", guildID, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deafen for member %s in guild %s: %w", memberID, guildID, err)
	}
	return &d, nil
}

// DeleteDeafen removes the deafen row for a member.
func DeleteDeafen(db *sqlx.DB, guildID, memberID string) error {
	_, err := db.Exec("DELETE FROM deafens WHERE guild_id = ? AND member_id = ?", guildID, memberID)
	if err != nil {
		return fmt.Errorf("failed to delete deafen for member %s in guild %s: %w", memberID, guildID, err)
	}
	return nil
}
