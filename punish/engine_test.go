package punish

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"moderation-bot/model"
	"moderation-bot/utils/database/punishments"
)

type permEdit struct {
	channelID string
	targetID  string
	allow     int64
	deny      int64
}

type fakeSession struct {
	mu          sync.Mutex
	channels    []*discordgo.Channel
	channelsFn  func() ([]*discordgo.Channel, error) // overrides channels when set
	perms       map[string]int64                     // channelID -> bot permissions there
	setErr      map[string]error
	memberErr   error
	permSets    []permEdit
	permDeletes []permEdit
}

func (f *fakeSession) GuildChannels(string, ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	if f.channelsFn != nil {
		return f.channelsFn()
	}
	return f.channels, nil
}

func (f *fakeSession) UserChannelPermissions(_, channelID string, _ ...discordgo.RequestOption) (int64, error) {
	return f.perms[channelID], nil
}

func (f *fakeSession) ChannelPermissionSet(channelID, targetID string, _ discordgo.PermissionOverwriteType, allow, deny int64, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.setErr[channelID]; err != nil {
		return err
	}
	f.permSets = append(f.permSets, permEdit{channelID, targetID, allow, deny})
	return nil
}

func (f *fakeSession) ChannelPermissionDelete(channelID, targetID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permDeletes = append(f.permDeletes, permEdit{channelID: channelID, targetID: targetID})
	return nil
}

func (f *fakeSession) GuildMember(_, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	return &discordgo.Member{User: &discordgo.User{ID: userID}}, nil
}

type fakeNotifier struct {
	lifted chan *model.PunishmentRecord
}

func (n *fakeNotifier) PunishmentLifted(rec *model.PunishmentRecord) {
	n.lifted <- rec
}

func newTestEngine(t *testing.T, fs *fakeSession) (*Engine, *fakeNotifier, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := punishments.CreateTables(db); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}

	logger := zerolog.Nop()
	notifier := &fakeNotifier{lifted: make(chan *model.PunishmentRecord, 8)}
	engine := NewEngine(db, fs, NewOverlay(fs, "bot", logger), notifier, logger)
	engine.now = func() time.Time { return time.Unix(1_000_000, 0) }
	return engine, notifier, db
}

// blockSleep installs a sleep that records requested durations and blocks
// until released (or until the countdown is cancelled).
func blockSleep(e *Engine) (durations chan time.Duration, release chan struct{}) {
	durations = make(chan time.Duration, 8)
	release = make(chan struct{})
	e.sleep = func(ctx context.Context, d time.Duration) bool {
		durations <- d
		select {
		case <-release:
			return true
		case <-ctx.Done():
			return false
		}
	}
	return durations, release
}

func muteRequest(seconds int64) BeginRequest {
	return BeginRequest{
		GuildID:       "g1",
		TargetID:      "u1",
		ActorID:       "mod",
		OrigChannelID: "chan",
		Type:          model.PunishmentMute,
		Reason:        "spamming",
		Seconds:       seconds,
	}
}

func TestBeginCreatesFreshPunishment(t *testing.T) {
	e, _, db := newTestEngine(t, &fakeSession{})
	blockSleep(e)

	fresh, err := e.Begin(muteRequest(60))
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if !fresh {
		t.Error("expected a fresh punishment")
	}

	m, err := punishments.GetMute(db, "g1", "u1")
	if err != nil || m == nil {
		t.Fatalf("expected a mute row, got %+v (err %v)", m, err)
	}
	records, _ := punishments.ListTimers(db)
	if len(records) != 1 {
		t.Fatalf("expected 1 timer record, got %d", len(records))
	}
	if records[0].TargetTS != 1_000_000+60 {
		t.Errorf("target_ts = %d, want %d", records[0].TargetTS, 1_000_000+60)
	}
}

func TestBeginRenewalReplacesTimer(t *testing.T) {
	e, _, db := newTestEngine(t, &fakeSession{})
	blockSleep(e)

	if _, err := e.Begin(muteRequest(60)); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	fresh, err := e.Begin(muteRequest(120))
	if err != nil {
		t.Fatalf("Begin renewal: %v", err)
	}
	if fresh {
		t.Error("expected a renewal, got a fresh punishment")
	}

	// at most one timer record and one mute row per (guild, target, type)
	records, _ := punishments.ListTimers(db)
	if len(records) != 1 {
		t.Fatalf("expected 1 timer record after renewal, got %d", len(records))
	}
	if records[0].TargetTS != 1_000_000+120 {
		t.Errorf("renewed target_ts = %d, want %d", records[0].TargetTS, 1_000_000+120)
	}
}

func TestEndLiftsPunishment(t *testing.T) {
	e, _, db := newTestEngine(t, &fakeSession{})
	blockSleep(e)

	if _, err := e.Begin(muteRequest(60)); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	lifted, _, err := e.End("g1", "u1", model.PunishmentMute)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if !lifted {
		t.Error("expected the punishment to be lifted")
	}

	m, _ := punishments.GetMute(db, "g1", "u1")
	if m != nil {
		t.Error("mute row survived End")
	}
	records, _ := punishments.ListTimers(db)
	if len(records) != 0 {
		t.Errorf("timer record survived End: %+v", records)
	}

	lifted, _, err = e.End("g1", "u1", model.PunishmentMute)
	if err != nil {
		t.Fatalf("second End: %v", err)
	}
	if lifted {
		t.Error("End reported a lift for an unpunished member")
	}
}

func TestEndReportsSelfInflicted(t *testing.T) {
	e, _, _ := newTestEngine(t, &fakeSession{})
	blockSleep(e)

	req := muteRequest(0)
	req.Type = model.PunishmentDeafen
	req.SelfInflicted = true
	if _, err := e.Begin(req); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	lifted, selfInflicted, err := e.End("g1", "u1", model.PunishmentDeafen)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if !lifted || !selfInflicted {
		t.Errorf("lifted=%v selfInflicted=%v, want true/true", lifted, selfInflicted)
	}
}

func TestCountdownReversesOnExpiry(t *testing.T) {
	e, notifier, db := newTestEngine(t, &fakeSession{})
	_, release := blockSleep(e)

	if _, err := e.Begin(muteRequest(60)); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	close(release)

	select {
	case rec := <-notifier.lifted:
		if rec.TargetID != "u1" || rec.Type != model.PunishmentMute {
			t.Errorf("unexpected lift notification %+v", rec)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never fired")
	}

	m, _ := punishments.GetMute(db, "g1", "u1")
	if m != nil {
		t.Error("mute row survived expiry")
	}
	records, _ := punishments.ListTimers(db)
	if len(records) != 0 {
		t.Errorf("timer record survived expiry: %+v", records)
	}
}

func TestCountdownNoopWhenRowGone(t *testing.T) {
	e, notifier, db := newTestEngine(t, &fakeSession{})
	_, release := blockSleep(e)

	if _, err := e.Begin(muteRequest(60)); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	// lift the punishment out-of-band, bypassing End and its cancellation
	if err := punishments.DeleteMute(db, "g1", "u1"); err != nil {
		t.Fatalf("DeleteMute: %v", err)
	}
	close(release)

	select {
	case rec := <-notifier.lifted:
		t.Fatalf("countdown produced side effects for a lifted punishment: %+v", rec)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRestorePreservesRemainingDuration(t *testing.T) {
	e, _, db := newTestEngine(t, &fakeSession{})
	durations, _ := blockSleep(e)

	rec := &model.PunishmentRecord{
		GuildID:  "g1",
		ActorID:  "mod",
		TargetID: "u1",
		Type:     model.PunishmentMute,
		Reason:   "spamming",
		TargetTS: 1_000_000 + 100,
	}
	if _, err := punishments.InsertTimer(db, rec); err != nil {
		t.Fatalf("InsertTimer: %v", err)
	}

	if err := e.RestoreAll(); err != nil {
		t.Fatalf("RestoreAll: %v", err)
	}

	select {
	case d := <-durations:
		if d != 100*time.Second {
			t.Errorf("restored countdown = %v, want 100s", d)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no countdown spawned by restore")
	}

	// the record is re-inserted with actor and reason carried over
	records, _ := punishments.ListTimers(db)
	if len(records) != 1 {
		t.Fatalf("expected 1 record after restore, got %d", len(records))
	}
	if records[0].ActorID != "mod" || records[0].Reason != "spamming" {
		t.Errorf("restore dropped audit fields: %+v", records[0])
	}
}

func TestRestoreFiresImmediatelyWhenPastDue(t *testing.T) {
	e, _, db := newTestEngine(t, &fakeSession{})
	durations, _ := blockSleep(e)

	rec := &model.PunishmentRecord{
		GuildID:  "g1",
		ActorID:  "mod",
		TargetID: "u1",
		Type:     model.PunishmentMute,
		TargetTS: 1_000_000 - 50, // already expired
	}
	if _, err := punishments.InsertTimer(db, rec); err != nil {
		t.Fatalf("InsertTimer: %v", err)
	}

	if err := e.RestoreAll(); err != nil {
		t.Fatalf("RestoreAll: %v", err)
	}

	select {
	case d := <-durations:
		if d <= 0 || d > time.Second {
			t.Errorf("past-due countdown = %v, want a small positive epsilon", d)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("past-due record never scheduled")
	}
}

func TestRestoreSkipsUnresolvableRecords(t *testing.T) {
	fs := &fakeSession{memberErr: errors.New("unknown member")}
	e, _, db := newTestEngine(t, fs)
	durations, _ := blockSleep(e)

	rec := &model.PunishmentRecord{
		GuildID:  "g1",
		ActorID:  "mod",
		TargetID: "gone",
		Type:     model.PunishmentMute,
		TargetTS: 1_000_000 + 100,
	}
	if _, err := punishments.InsertTimer(db, rec); err != nil {
		t.Fatalf("InsertTimer: %v", err)
	}

	if err := e.RestoreAll(); err != nil {
		t.Fatalf("RestoreAll must not fail on one bad record: %v", err)
	}

	select {
	case d := <-durations:
		t.Fatalf("spawned a countdown (%v) for an unresolvable record", d)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestIndefinitePunishmentSpawnsNoCountdown(t *testing.T) {
	e, _, db := newTestEngine(t, &fakeSession{})
	durations, _ := blockSleep(e)

	fresh, err := e.Begin(muteRequest(0))
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if !fresh {
		t.Error("expected a fresh punishment")
	}

	records, _ := punishments.ListTimers(db)
	if len(records) != 0 {
		t.Errorf("indefinite punishment created a timer record: %+v", records)
	}
	select {
	case d := <-durations:
		t.Fatalf("indefinite punishment spawned a countdown of %v", d)
	case <-time.After(100 * time.Millisecond):
	}

	lifted, _, err := e.End("g1", "u1", model.PunishmentMute)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if !lifted {
		t.Error("manual reversal failed for an indefinite punishment")
	}
}

func TestSelfDeafenZeroDurationGetsMinimum(t *testing.T) {
	e, _, db := newTestEngine(t, &fakeSession{})
	blockSleep(e)

	req := BeginRequest{
		GuildID:       "g1",
		TargetID:      "u1",
		ActorID:       "u1",
		OrigChannelID: "chan",
		Type:          model.PunishmentDeafen,
		Reason:        "studying",
		Seconds:       0,
		SelfInflicted: true,
	}
	if _, err := e.Begin(req); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	records, _ := punishments.ListTimers(db)
	if len(records) != 1 {
		t.Fatalf("expected 1 timer record, got %d", len(records))
	}
	if records[0].TargetTS != 1_000_000+selfDeafenMinimum {
		t.Errorf("target_ts = %d, want now+%d", records[0].TargetTS, selfDeafenMinimum)
	}
	if !records[0].SelfInflicted {
		t.Error("self_inflicted not recorded")
	}
	d, _ := punishments.GetDeafen(db, "g1", "u1")
	if d == nil || !d.SelfInflicted {
		t.Errorf("deafen row missing self_inflicted: %+v", d)
	}
}

func TestBeginsForDifferentMembersDoNotSerialize(t *testing.T) {
	firstCall := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	fs := &fakeSession{}
	fs.channelsFn = func() ([]*discordgo.Channel, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(firstCall)
			<-release
		}
		return nil, nil
	}
	e, _, _ := newTestEngine(t, fs)
	blockSleep(e)

	// the first member's overlay fan-out is parked mid-edit
	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		if _, err := e.Begin(muteRequest(60)); err != nil {
			t.Errorf("Begin for first member: %v", err)
		}
	}()
	<-firstCall

	other := muteRequest(60)
	other.TargetID = "u2"
	secondDone := make(chan struct{})
	go func() {
		defer close(secondDone)
		if _, err := e.Begin(other); err != nil {
			t.Errorf("Begin for second member: %v", err)
		}
	}()

	select {
	case <-secondDone:
	case <-time.After(2 * time.Second):
		t.Fatal("a second member's punishment waited on the first member's overlay edits")
	}

	close(release)
	<-firstDone
}

func TestRestartAllCancelsTrackedCountdowns(t *testing.T) {
	e, _, db := newTestEngine(t, &fakeSession{})
	durations, _ := blockSleep(e)

	if _, err := e.Begin(muteRequest(60)); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	<-durations // the original countdown is parked

	if err := e.RestartAll(); err != nil {
		t.Fatalf("RestartAll: %v", err)
	}

	// the restore pass spawns a replacement countdown
	select {
	case <-durations:
	case <-time.After(2 * time.Second):
		t.Fatal("RestartAll spawned no replacement countdown")
	}

	records, _ := punishments.ListTimers(db)
	if len(records) != 1 {
		t.Errorf("expected exactly 1 timer record after restart, got %d", len(records))
	}
}
