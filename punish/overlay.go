package punish

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"moderation-bot/model"
)

// Permission bits applied as channel overwrites. A mute blocks sending and
// reacting; a deafen blocks reading entirely.
const (
	MuteDenyBits   = discordgo.PermissionSendMessages | discordgo.PermissionAddReactions | discordgo.PermissionVoiceSpeak
	DeafenDenyBits = discordgo.PermissionViewChannel | discordgo.PermissionVoiceConnect
)

// DenyBits returns the overwrite bits a punishment type denies.
func DenyBits(t model.PunishmentType) int64 {
	if t == model.PunishmentDeafen {
		return DeafenDenyBits
	}
	return MuteDenyBits
}

const overlayRights = discordgo.PermissionManageRoles | discordgo.PermissionManageChannels

// Overlay applies and clears per-channel permission overwrites for a member
// across every channel in a guild, without disturbing other overwrite bits
// already present.
type Overlay struct {
	session Session
	botID   string
	log     zerolog.Logger
}

func NewOverlay(session Session, botID string, log zerolog.Logger) *Overlay {
	return &Overlay{session: session, botID: botID, log: log}
}

// Apply merges the deny bits into the member's overwrite in every channel
// where the bot holds both Manage Roles and Manage Channels. Channels
// without rights are skipped silently; individual edit failures are logged
// and never abort the remaining edits.
func (o *Overlay) Apply(guildID, memberID string, bits int64) error {
	return o.edit(guildID, memberID, bits, false)
}

// Clear removes the bits from the member's overwrite in every channel,
// restoring prior per-channel state rather than forcing "allow". Overwrites
// left empty are deleted outright.
func (o *Overlay) Clear(guildID, memberID string, bits int64) error {
	return o.edit(guildID, memberID, bits, true)
}

func (o *Overlay) edit(guildID, memberID string, bits int64, clear bool) error {
	channels, err := o.session.GuildChannels(guildID)
	if err != nil {
		return fmt.Errorf("failed to list channels for guild %s: %w", guildID, err)
	}

	// All channel edits are independent; fan out and settle them all.
	var g errgroup.Group
	for _, channel := range channels {
		g.Go(func() error {
			perms, err := o.session.UserChannelPermissions(o.botID, channel.ID)
			if err != nil || perms&overlayRights != overlayRights {
				return nil // no rights in this channel, skip
			}

			allow, deny, found := memberOverwrite(channel, memberID)
			if clear {
				if !found {
					return nil
				}
				allow &^= bits
				deny &^= bits
			} else {
				allow &^= bits
				deny |= bits
			}

			if allow == 0 && deny == 0 {
				if err := o.session.ChannelPermissionDelete(channel.ID, memberID); err != nil {
					o.log.Error().Err(err).
						Str("channel_id", channel.ID).
						Str("member_id", memberID).
						Msg("failed to drop member overwrite")
				}
				return nil
			}
			err = o.session.ChannelPermissionSet(channel.ID, memberID, discordgo.PermissionOverwriteTypeMember, allow, deny)
			if err != nil {
				o.log.Error().Err(err).
					Str("channel_id", channel.ID).
					Str("member_id", memberID).
					Msg("failed to edit member overwrite")
			}
			return nil
		})
	}
	return g.Wait()
}

func memberOverwrite(channel *discordgo.Channel, memberID string) (allow, deny int64, found bool) {
	for _, ow := range channel.PermissionOverwrites {
		if ow.Type == discordgo.PermissionOverwriteTypeMember && ow.ID == memberID {
			return ow.Allow, ow.Deny, true
		}
	}
	return 0, 0, false
}
