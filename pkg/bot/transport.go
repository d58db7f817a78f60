package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Transport is the messaging-platform boundary the bot core talks to. It
// exists so handlers can run against a mock in tests, the same way the
// session is abstracted in our other bots.
type Transport interface {
	SendMessage(ctx context.Context, channelID, text string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	SendFile(ctx context.Context, channelID, name string, r io.Reader) error
	GroupMetadata(ctx context.Context, groupID string) (*GroupMetadata, error)
	UpdateParticipants(ctx context.Context, groupID string, userIDs []string, action ParticipantAction) error
	InviteLink(ctx context.Context, groupID string) (string, error)
	SetGroupSetting(ctx context.Context, groupID string, mode GroupMode) error
	DisplayName(ctx context.Context, groupID, userID string) (string, error)
}

type ParticipantAction string

const (
	ActionAdd     ParticipantAction = "add"
	ActionRemove  ParticipantAction = "remove"
	ActionPromote ParticipantAction = "promote"
	ActionDemote  ParticipantAction = "demote"
)

type GroupMode string

const (
	// GroupAnnouncement restricts posting to admins.
	GroupAnnouncement    GroupMode = "announcement"
	GroupNotAnnouncement GroupMode = "not_announcement"
)

type Participant struct {
	ID    string `json:"id"`
	Admin bool   `json:"admin"`
}

type GroupMetadata struct {
	Subject      string        `json:"subject"`
	Participants []Participant `json:"participants"`
	Created      time.Time     `json:"created"`
	// HomeChannel is where unsolicited group messages (welcomes) go.
	HomeChannel string `json:"homeChannel"`
}

// ErrUnsupported marks group operations the platform cannot perform.
var ErrUnsupported = errors.New("operation not supported on this platform")

// DiscordTransport adapts a discordgo session to the Transport interface.
// A guild is a group; the configured admin role marks group admins.
type DiscordTransport struct {
	Session     *discordgo.Session
	AdminRoleID string
}

func (t *DiscordTransport) SendMessage(ctx context.Context, channelID, text string) error {
	_, err := t.Session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	return err
}

func (t *DiscordTransport) React(ctx context.Context, channelID, messageID, emoji string) error {
	return t.Session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

func (t *DiscordTransport) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return t.Session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (t *DiscordTransport) SendFile(ctx context.Context, channelID, name string, r io.Reader) error {
	_, err := t.Session.ChannelFileSend(channelID, name, r, discordgo.WithContext(ctx))
	return err
}

func (t *DiscordTransport) GroupMetadata(ctx context.Context, groupID string) (*GroupMetadata, error) {
	guild, err := t.Session.Guild(groupID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild %s: %w", groupID, err)
	}

	members, err := t.Session.GuildMembers(groupID, "", 1000, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members of %s: %w", groupID, err)
	}

	meta := &GroupMetadata{
		Subject:     guild.Name,
		HomeChannel: guild.SystemChannelID,
	}
	created, err := discordgo.SnowflakeTimestamp(guild.ID)
	if err == nil {
		meta.Created = created
	}
	for _, m := range members {
		meta.Participants = append(meta.Participants, Participant{
			ID:    m.User.ID,
			Admin: m.User.ID == guild.OwnerID || t.hasAdminRole(m),
		})
	}
	return meta, nil
}

func (t *DiscordTransport) hasAdminRole(m *discordgo.Member) bool {
	if t.AdminRoleID == "" {
		return false
	}
	for _, role := range m.Roles {
		if role == t.AdminRoleID {
			return true
		}
	}
	return false
}

func (t *DiscordTransport) UpdateParticipants(ctx context.Context, groupID string, userIDs []string, action ParticipantAction) error {
	for _, id := range userIDs {
		var err error
		switch action {
		case ActionRemove:
			err = t.Session.GuildMemberDelete(groupID, id, discordgo.WithContext(ctx))
		case ActionPromote:
			err = t.roleChange(ctx, groupID, id, true)
		case ActionDemote:
			err = t.roleChange(ctx, groupID, id, false)
		case ActionAdd:
			// Discord cannot force-join users; they need an invite.
			err = ErrUnsupported
		default:
			err = fmt.Errorf("unknown participant action %q", action)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *DiscordTransport) roleChange(ctx context.Context, groupID, userID string, grant bool) error {
	if t.AdminRoleID == "" {
		return ErrUnsupported
	}
	if grant {
		return t.Session.GuildMemberRoleAdd(groupID, userID, t.AdminRoleID, discordgo.WithContext(ctx))
	}
	return t.Session.GuildMemberRoleRemove(groupID, userID, t.AdminRoleID, discordgo.WithContext(ctx))
}

func (t *DiscordTransport) InviteLink(ctx context.Context, groupID string) (string, error) {
	channels, err := t.Session.GuildChannels(groupID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to list channels of %s: %w", groupID, err)
	}
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		invite, err := t.Session.ChannelInviteCreate(ch.ID, discordgo.Invite{MaxAge: 0, MaxUses: 0}, discordgo.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("failed to create invite: %w", err)
		}
		return "https://discord.gg/" + invite.Code, nil
	}
	return "", errors.New("no text channel available for an invite")
}

func (t *DiscordTransport) SetGroupSetting(ctx context.Context, groupID string, mode GroupMode) error {
	channels, err := t.Session.GuildChannels(groupID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to list channels of %s: %w", groupID, err)
	}
	// The @everyone role id equals the guild id.
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		var allow, deny int64
		if mode == GroupAnnouncement {
			deny = discordgo.PermissionSendMessages
		} else {
			allow = discordgo.PermissionSendMessages
		}
		err := t.Session.ChannelPermissionSet(ch.ID, groupID, discordgo.PermissionOverwriteTypeRole, allow, deny, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("failed to update channel %s: %w", ch.ID, err)
		}
	}
	return nil
}

func (t *DiscordTransport) DisplayName(ctx context.Context, groupID, userID string) (string, error) {
	if groupID != "" {
		member, err := t.Session.GuildMember(groupID, userID, discordgo.WithContext(ctx))
		if err == nil {
			if member.Nick != "" {
				return member.Nick, nil
			}
			return member.User.Username, nil
		}
	}
	user, err := t.Session.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to resolve user %s: %w", userID, err)
	}
	return user.Username, nil
}
