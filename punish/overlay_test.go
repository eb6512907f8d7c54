package punish

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

func textChannel(id string, overwrites ...*discordgo.PermissionOverwrite) *discordgo.Channel {
	return &discordgo.Channel{
		ID:                   id,
		Type:                 discordgo.ChannelTypeGuildText,
		PermissionOverwrites: overwrites,
	}
}

func memberOW(memberID string, allow, deny int64) *discordgo.PermissionOverwrite {
	return &discordgo.PermissionOverwrite{
		ID:    memberID,
		Type:  discordgo.PermissionOverwriteTypeMember,
		Allow: allow,
		Deny:  deny,
	}
}

func TestApplyMergesExistingOverwrite(t *testing.T) {
	// the member already has an allow for the very bit being denied, plus an
	// unrelated deny that must survive untouched
	fs := &fakeSession{
		channels: []*discordgo.Channel{
			textChannel("c1", memberOW("u1", discordgo.PermissionSendMessages, discordgo.PermissionEmbedLinks)),
		},
		perms: map[string]int64{"c1": overlayRights},
	}
	o := NewOverlay(fs, "bot", zerolog.Nop())

	if err := o.Apply("g1", "u1", MuteDenyBits); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(fs.permSets) != 1 {
		t.Fatalf("expected 1 overwrite edit, got %d", len(fs.permSets))
	}
	edit := fs.permSets[0]
	if edit.allow != 0 {
		t.Errorf("allow = %d, want the denied bit stripped", edit.allow)
	}
	wantDeny := MuteDenyBits | discordgo.PermissionEmbedLinks
	if edit.deny != int64(wantDeny) {
		t.Errorf("deny = %d, want %d", edit.deny, wantDeny)
	}
}

func TestApplySkipsChannelsWithoutRights(t *testing.T) {
	fs := &fakeSession{
		channels: []*discordgo.Channel{
			textChannel("c1"),
			textChannel("c2"),
		},
		perms: map[string]int64{
			"c1": discordgo.PermissionManageRoles, // missing Manage Channels
			"c2": overlayRights,
		},
	}
	o := NewOverlay(fs, "bot", zerolog.Nop())

	if err := o.Apply("g1", "u1", MuteDenyBits); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(fs.permSets) != 1 {
		t.Fatalf("expected 1 overwrite edit, got %d", len(fs.permSets))
	}
	if fs.permSets[0].channelID != "c2" {
		t.Errorf("edited channel %s, want c2", fs.permSets[0].channelID)
	}
}

func TestApplyContinuesPastEditFailure(t *testing.T) {
	fs := &fakeSession{
		channels: []*discordgo.Channel{
			textChannel("c1"),
			textChannel("c2"),
		},
		perms: map[string]int64{"c1": overlayRights, "c2": overlayRights},
		setErr: map[string]error{
			"c1": errors.New("missing access"),
		},
	}
	o := NewOverlay(fs, "bot", zerolog.Nop())

	if err := o.Apply("g1", "u1", DeafenDenyBits); err != nil {
		t.Fatalf("a single channel failure must not abort Apply: %v", err)
	}

	if len(fs.permSets) != 1 || fs.permSets[0].channelID != "c2" {
		t.Errorf("expected the surviving edit on c2, got %+v", fs.permSets)
	}
}

func TestClearDeletesEmptyOverwrite(t *testing.T) {
	// the overwrite carries nothing but the punishment bits, so clearing it
	// leaves an empty shell that should be removed outright
	fs := &fakeSession{
		channels: []*discordgo.Channel{
			textChannel("c1", memberOW("u1", 0, MuteDenyBits)),
		},
		perms: map[string]int64{"c1": overlayRights},
	}
	o := NewOverlay(fs, "bot", zerolog.Nop())

	if err := o.Clear("g1", "u1", MuteDenyBits); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if len(fs.permSets) != 0 {
		t.Errorf("unexpected overwrite edits %+v", fs.permSets)
	}
	if len(fs.permDeletes) != 1 || fs.permDeletes[0].channelID != "c1" {
		t.Errorf("expected the empty overwrite on c1 deleted, got %+v", fs.permDeletes)
	}
}

func TestClearKeepsUnrelatedBits(t *testing.T) {
	fs := &fakeSession{
		channels: []*discordgo.Channel{
			textChannel("c1", memberOW("u1", discordgo.PermissionAttachFiles, MuteDenyBits|discordgo.PermissionMentionEveryone)),
		},
		perms: map[string]int64{"c1": overlayRights},
	}
	o := NewOverlay(fs, "bot", zerolog.Nop())

	if err := o.Clear("g1", "u1", MuteDenyBits); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if len(fs.permSets) != 1 {
		t.Fatalf("expected 1 overwrite edit, got %d", len(fs.permSets))
	}
	edit := fs.permSets[0]
	if edit.allow != int64(discordgo.PermissionAttachFiles) {
		t.Errorf("allow = %d, want the unrelated allow preserved", edit.allow)
	}
	if edit.deny != int64(discordgo.PermissionMentionEveryone) {
		t.Errorf("deny = %d, want only the unrelated deny left", edit.deny)
	}
}

func TestClearSkipsChannelsWithoutOverwrite(t *testing.T) {
	fs := &fakeSession{
		channels: []*discordgo.Channel{textChannel("c1")},
		perms:    map[string]int64{"c1": overlayRights},
	}
	o := NewOverlay(fs, "bot", zerolog.Nop())

	if err := o.Clear("g1", "u1", MuteDenyBits); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(fs.permSets) != 0 || len(fs.permDeletes) != 0 {
		t.Errorf("touched channels with no overwrite: sets=%+v deletes=%+v", fs.permSets, fs.permDeletes)
	}
}
