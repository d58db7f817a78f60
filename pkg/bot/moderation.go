package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"caprisun/pkg/store"
)

// Moderator owns the warning counter and its escalation. Both the explicit
// warn command and the passive antilink filter go through the same
// increment / check-threshold / reset sequence so the two paths can never
// drift apart.
type Moderator struct {
	repo      *store.Repository
	transport Transport
	directory *Directory
	resolver  *RoleResolver
	threshold int
}

func NewModerator(repo *store.Repository, transport Transport, directory *Directory, resolver *RoleResolver, threshold int) *Moderator {
	return &Moderator{
		repo:      repo,
		transport: transport,
		directory: directory,
		resolver:  resolver,
		threshold: threshold,
	}
}

func (m *Moderator) Threshold() int {
	return m.threshold
}

// Warn increments the user's warning count and escalates at the threshold:
// non-owners are removed from the group and the removal is announced; the
// count resets to absent either way, so an owner just gets a clean slate.
// Returns the post-increment count.
func (m *Moderator) Warn(ctx context.Context, channelID, groupID, target string) (int, error) {
	var count int
	err := m.repo.Update(func(doc *store.Document) error {
		doc.Warnings[target]++
		count = doc.Warnings[target]
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record warning: %w", err)
	}

	if count < m.threshold {
		return count, nil
	}

	role := m.resolver.Resolve(ctx, target, groupID, false)
	if role != RoleOwner {
		name := m.directory.DisplayName(ctx, groupID, target)
		if err := m.transport.UpdateParticipants(ctx, groupID, []string{target}, ActionRemove); err != nil {
			log.Error().Err(err).Str("user", target).Str("group", groupID).Msg("failed to remove user at warning threshold")
		} else {
			m.directory.Invalidate(ctx, groupID)
			if err := m.transport.SendMessage(ctx, channelID, fmt.Sprintf("@%s has been kicked for reaching %d warnings.", name, m.threshold)); err != nil {
				log.Error().Err(err).Str("channel", channelID).Msg("failed to announce removal")
			}
			log.Info().Str("user", target).Str("group", groupID).Msg("user removed at warning threshold")
		}
	}

	err = m.repo.Update(func(doc *store.Document) error {
		delete(doc.Warnings, target)
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("failed to reset warnings: %w", err)
	}
	return count, nil
}

// ContainsLink reports whether a message carries a URL scheme marker.
func ContainsLink(text string) bool {
	return strings.Contains(text, "http://") || strings.Contains(text, "https://")
}

// HandleAntilink treats a link in a filtered group as one warning against
// the sender and then deletes the offending message best-effort.
func (m *Moderator) HandleAntilink(ctx context.Context, ev Event) {
	count, err := m.Warn(ctx, ev.ChannelID, ev.GroupID, ev.Sender)
	if err != nil {
		log.Error().Err(err).Str("user", ev.Sender).Msg("antilink warn failed")
		return
	}

	name := m.directory.DisplayName(ctx, ev.GroupID, ev.Sender)
	msg := fmt.Sprintf("@%s, links are not allowed. Warning %d/%d.", name, count, m.threshold)
	if err := m.transport.SendMessage(ctx, ev.ChannelID, msg); err != nil {
		log.Error().Err(err).Str("channel", ev.ChannelID).Msg("failed to send antilink notice")
	}
	if err := m.transport.DeleteMessage(ctx, ev.ChannelID, ev.MessageID); err != nil {
		log.Error().Err(err).Str("channel", ev.ChannelID).Msg("failed to delete link message")
	}
}
