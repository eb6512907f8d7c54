package model

// PunishmentType selects which reversal behavior and which permission set
// applies to a punishment.
type PunishmentType int64

const (
	PunishmentMute   PunishmentType = 1
	PunishmentDeafen PunishmentType = 2
)

func (t PunishmentType) String() string {
	switch t {
	case PunishmentMute:
		return "mute"
	case PunishmentDeafen:
		return "deafen"
	}
	return "unknown"
}

// PastParticiple is used when phrasing mod-log notices ("muted", "deafened").
func (t PunishmentType) PastParticiple() string {
	switch t {
	case PunishmentMute:
		return "muted"
	case PunishmentDeafen:
		return "deafened"
	}
	return "punished"
}

// PunishmentRecord represents a single pending punishment expiry in the
// database. The table is named 'punishment_timers'. One row exists per
// active timed punishment; the row is deleted when the punishment lifts.
type PunishmentRecord struct {
	ID            int64          `db:"id"` // Primary Key, Auto-increment
	GuildID       string         `db:"guild_id"`
	ActorID       string         `db:"actor_id"`
	TargetID      string         `db:"target_id"`
	OrigChannelID string         `db:"orig_channel_id"` // empty means no origin channel
	Type          PunishmentType `db:"type"`
	Reason        string         `db:"reason"`
	TargetTS      int64          `db:"target_ts"` // UNIX seconds at which the punishment lifts
	SelfInflicted bool           `db:"self_inflicted"`
}

// Mute marks a member as currently muted, independent of any timer.
// The row is the source of truth for "is this member muted", queried on
// member rejoin to decide whether to reapply the permission overlay.
type Mute struct {
	MemberID string `db:"member_id"`
	GuildID  string `db:"guild_id"`
}

// Deafen marks a member as currently deafened, independent of any timer.
type Deafen struct {
	MemberID      string `db:"member_id"`
	GuildID       string `db:"guild_id"`
	SelfInflicted bool   `db:"self_inflicted"`
}
