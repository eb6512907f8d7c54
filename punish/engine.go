// Package punish implements the punishment timer subsystem: it applies
// temporary mutes and deafens as permission overlays, persists pending
// expiries so they survive restarts, schedules in-process countdowns to
// reverse them, and reconciles the in-memory schedule against the durable
// store on startup.
package punish

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"moderation-bot/model"
	"moderation-bot/utils/database/punishments"
)

// restoreEpsilon is the countdown used for records already past due at
// restore time, so the cleanup path still runs exactly once instead of
// being skipped.
const restoreEpsilon = 50 * time.Millisecond

// selfDeafenMinimum prevents a member locking themselves out indefinitely
// with no way to request help.
const selfDeafenMinimum = 30

type timerKey struct {
	guildID  string
	targetID string
	ptype    model.PunishmentType
}

type memberKey struct {
	guildID  string
	targetID string
}

// Engine schedules, tracks, persists, and reconciles per-member temporary
// punishments. A per-member mutex serializes the begin/end/supersede/expiry
// critical sections, which resolves the duplicate-begin race for a
// never-punished target and keeps overlay edits for one member from
// interleaving; punishments for different members proceed concurrently.
// The countdown sleep itself happens outside any lock.
type Engine struct {
	db       *sqlx.DB
	session  Session
	overlay  *Overlay
	notifier Notifier
	log      zerolog.Logger

	// mu guards only the timer registry and the member lock table, never
	// a network or database call.
	mu     sync.Mutex
	timers map[timerKey]context.CancelFunc
	locks  map[memberKey]*sync.Mutex

	// injected so tests can run against a fake clock
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool
}

func NewEngine(db *sqlx.DB, session Session, overlay *Overlay, notifier Notifier, log zerolog.Logger) *Engine {
	return &Engine{
		db:       db,
		session:  session,
		overlay:  overlay,
		notifier: notifier,
		log:      log,
		timers:   make(map[timerKey]context.CancelFunc),
		locks:    make(map[memberKey]*sync.Mutex),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// sleepContext blocks for d or until the context is cancelled. It reports
// whether the full duration elapsed.
func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// memberLock returns the mutex serializing punishment state changes for one
// member. One lock covers both punishment types: a mute and a deafen for
// the same member edit the same channel overwrites.
func (e *Engine) memberLock(guildID, targetID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := memberKey{guildID, targetID}
	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	return l
}

// BeginRequest describes a punishment to start.
type BeginRequest struct {
	GuildID       string
	TargetID      string
	ActorID       string
	OrigChannelID string // empty means no origin channel
	Type          model.PunishmentType
	Reason        string
	Seconds       int64 // 0 means indefinite: no countdown, manual reversal only
	SelfInflicted bool
}

// Begin starts a punishment. It returns true if this created a fresh
// punishment, false if it renewed an existing one (the prior timer record
// and countdown are torn down and replaced with the new duration).
//
// A store failure on the fresh path aborts the action entirely; an overlay
// failure is surfaced to the caller but does not roll back the member-state
// row.
func (e *Engine) Begin(req BeginRequest) (bool, error) {
	if req.SelfInflicted && req.Seconds == 0 {
		req.Seconds = selfDeafenMinimum
	}

	lock := e.memberLock(req.GuildID, req.TargetID)
	lock.Lock()
	defer lock.Unlock()

	punished, _, err := e.punishedRow(req.GuildID, req.TargetID, req.Type)
	if err != nil {
		return false, err
	}

	if punished {
		// Renewal: tear down the existing record and countdown before
		// scheduling the replacement.
		err := punishments.DeleteTimers(e.db, punishments.TimerFilter{
			GuildID:  req.GuildID,
			TargetID: req.TargetID,
			Type:     req.Type,
		})
		if err != nil {
			return false, err
		}
		e.cancelTimer(timerKey{req.GuildID, req.TargetID, req.Type})
	} else {
		if err := e.insertPunishedRow(req); err != nil {
			return false, err
		}
		if err := e.overlay.Apply(req.GuildID, req.TargetID, DenyBits(req.Type)); err != nil {
			return false, err
		}
	}

	if req.Seconds == 0 {
		return !punished, nil
	}

	rec := &model.PunishmentRecord{
		GuildID:       req.GuildID,
		ActorID:       req.ActorID,
		TargetID:      req.TargetID,
		OrigChannelID: req.OrigChannelID,
		Type:          req.Type,
		Reason:        req.Reason,
		TargetTS:      e.now().Unix() + req.Seconds,
		SelfInflicted: req.SelfInflicted,
	}
	id, err := punishments.InsertTimer(e.db, rec)
	if err != nil {
		return false, err
	}
	rec.ID = id
	e.spawn(rec)
	return !punished, nil
}

// End lifts a punishment ahead of its timer. It reports whether a
// punishment was found, and whether the lifted punishment had been
// self-inflicted (callers route their own mod-log notices).
func (e *Engine) End(guildID, memberID string, t model.PunishmentType) (lifted, selfInflicted bool, err error) {
	lock := e.memberLock(guildID, memberID)
	lock.Lock()
	defer lock.Unlock()

	punished, selfInflicted, err := e.punishedRow(guildID, memberID, t)
	if err != nil {
		return false, false, err
	}
	if !punished {
		return false, false, nil
	}

	if err := e.overlay.Clear(guildID, memberID, DenyBits(t)); err != nil {
		return false, false, err
	}
	if err := e.deletePunishedRow(guildID, memberID, t); err != nil {
		return false, false, err
	}
	err = punishments.DeleteTimers(e.db, punishments.TimerFilter{GuildID: guildID, TargetID: memberID, Type: t})
	if err != nil {
		return false, false, err
	}
	// Cancellation is an optimization; a countdown that slips past it still
	// no-ops on the missing row when it wakes.
	e.cancelTimer(timerKey{guildID, memberID, t})
	return true, selfInflicted, nil
}

// ListActive returns the pending timer records for one guild.
func (e *Engine) ListActive(guildID string) ([]model.PunishmentRecord, error) {
	return punishments.ListGuildTimers(e.db, guildID)
}

// RestoreAll re-derives countdown tasks from the durable records. It must
// run to completion before the bot accepts new punishment commands,
// otherwise a fresh command for the same member can race the restore pass.
func (e *Engine) RestoreAll() error {
	records, err := punishments.ListTimers(e.db)
	if err != nil {
		return fmt.Errorf("failed to load punishment timers for restore: %w", err)
	}

	for i := range records {
		rec := records[i]
		lock := e.memberLock(rec.GuildID, rec.TargetID)
		lock.Lock()
		err := e.restore(&rec)
		lock.Unlock()
		if err != nil {
			e.log.Warn().Err(err).
				Int64("record_id", rec.ID).
				Str("guild_id", rec.GuildID).
				Str("target_id", rec.TargetID).
				Msg("skipping unrestorable punishment timer")
		}
	}
	return nil
}

func (e *Engine) restore(rec *model.PunishmentRecord) error {
	// Resolve the target before committing to anything; the guild may have
	// dropped the bot or the member may be gone.
	if _, err := e.session.GuildMember(rec.GuildID, rec.TargetID); err != nil {
		return fmt.Errorf("target no longer resolvable: %w", err)
	}

	// Re-insert through the same path fresh timers use: delete the old
	// record, carry actor/reason/deadline over verbatim.
	if err := punishments.DeleteTimers(e.db, punishments.TimerFilter{ID: rec.ID}); err != nil {
		return err
	}
	fresh := *rec
	fresh.ID = 0
	id, err := punishments.InsertTimer(e.db, &fresh)
	if err != nil {
		return err
	}
	fresh.ID = id
	e.spawn(&fresh)

	e.log.Info().
		Str("type", fresh.Type.String()).
		Str("guild_id", fresh.GuildID).
		Str("target_id", fresh.TargetID).
		Int64("target_ts", fresh.TargetTS).
		Msg("restored punishment timer")
	return nil
}

// RestartAll cancels every tracked countdown and re-runs restoration from
// the durable store. It recovers from the in-memory registry drifting from
// the records on disk.
func (e *Engine) RestartAll() error {
	e.mu.Lock()
	for key, cancel := range e.timers {
		cancel()
		delete(e.timers, key)
	}
	e.mu.Unlock()
	return e.RestoreAll()
}

// spawn registers a cancellation handle and starts the countdown goroutine.
// Callers hold the member lock.
func (e *Engine) spawn(rec *model.PunishmentRecord) {
	key := timerKey{rec.GuildID, rec.TargetID, rec.Type}
	ctx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	if old, ok := e.timers[key]; ok {
		old()
	}
	e.timers[key] = cancel
	e.mu.Unlock()

	remaining := time.Duration(rec.TargetTS-e.now().Unix()) * time.Second
	if remaining <= 0 {
		remaining = restoreEpsilon
	}
	go e.countdown(ctx, rec, remaining)
}

// countdown is the body of one timer task. The sleep is its only long-lived
// suspension point and holds no lock.
func (e *Engine) countdown(ctx context.Context, rec *model.PunishmentRecord, d time.Duration) {
	if !e.sleep(ctx, d) {
		return // cancelled by manual reversal, supersession, or restart
	}

	lock := e.memberLock(rec.GuildID, rec.TargetID)
	lock.Lock()
	// The member-state row may have been removed while we slept. A missing
	// row means the punishment was lifted or superseded out from under this
	// task, and it must produce zero side effects.
	punished, _, err := e.punishedRow(rec.GuildID, rec.TargetID, rec.Type)
	if err != nil {
		lock.Unlock()
		e.log.Error().Err(err).Int64("record_id", rec.ID).Msg("countdown row check failed")
		return
	}
	if !punished {
		lock.Unlock()
		return
	}

	if err := e.overlay.Clear(rec.GuildID, rec.TargetID, DenyBits(rec.Type)); err != nil {
		e.log.Error().Err(err).Int64("record_id", rec.ID).Msg("failed to clear overlay on expiry")
	}
	if err := e.deletePunishedRow(rec.GuildID, rec.TargetID, rec.Type); err != nil {
		e.log.Error().Err(err).Int64("record_id", rec.ID).Msg("failed to delete punishment row on expiry")
	}
	if err := punishments.DeleteTimers(e.db, punishments.TimerFilter{ID: rec.ID}); err != nil {
		e.log.Error().Err(err).Int64("record_id", rec.ID).Msg("failed to delete timer record on expiry")
	}
	e.cancelTimer(timerKey{rec.GuildID, rec.TargetID, rec.Type})
	lock.Unlock()

	if e.notifier != nil {
		e.notifier.PunishmentLifted(rec)
	}
}

// cancelTimer cancels and forgets the handle for a key, if one is tracked.
// Cancelling an already-finished countdown is harmless.
func (e *Engine) cancelTimer(key timerKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cancel, ok := e.timers[key]; ok {
		cancel()
		delete(e.timers, key)
	}
}

func (e *Engine) punishedRow(guildID, memberID string, t model.PunishmentType) (punished, selfInflicted bool, err error) {
	switch t {
	case model.PunishmentDeafen:
		d, err := punishments.GetDeafen(e.db, guildID, memberID)
		if err != nil {
			return false, false, err
		}
		return d != nil, d != nil && d.SelfInflicted, nil
	default:
		m, err := punishments.GetMute(e.db, guildID, memberID)
		if err != nil {
			return false, false, err
		}
		return m != nil, false, nil
	}
}

func (e *Engine) insertPunishedRow(req BeginRequest) error {
	if req.Type == model.PunishmentDeafen {
		return punishments.AddDeafen(e.db, model.Deafen{
			MemberID:      req.TargetID,
			GuildID:       req.GuildID,
			SelfInflicted: req.SelfInflicted,
		})
	}
	return punishments.AddMute(e.db, model.Mute{MemberID: req.TargetID, GuildID: req.GuildID})
}

func (e *Engine) deletePunishedRow(guildID, memberID string, t model.PunishmentType) error {
	if t == model.PunishmentDeafen {
		return punishments.DeleteDeafen(e.db, guildID, memberID)
	}
	return punishments.DeleteMute(e.db, guildID, memberID)
}
