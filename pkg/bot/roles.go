package bot

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"caprisun/pkg/store"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleBanned Role = "banned"
)

var deviceSuffix = regexp.MustCompile(`:\d+$`)

// NormalizeUserID strips the leading "+" and any ":<digits>" device suffix
// so ids compare equal regardless of which device sent the message.
func NormalizeUserID(id string) string {
	id = strings.TrimPrefix(id, "+")
	return deviceSuffix.ReplaceAllString(id, "")
}

// RoleResolver maps a user in a chat to a permission tier. Owner status is
// checked first, so a banned owner is still an owner; the ban mechanism can
// never revoke ownership.
type RoleResolver struct {
	directory *Directory
	owners    []string
}

func NewRoleResolver(directory *Directory, owners []string) *RoleResolver {
	normalized := make([]string, 0, len(owners))
	for _, o := range owners {
		normalized = append(normalized, NormalizeUserID(o))
	}
	return &RoleResolver{directory: directory, owners: normalized}
}

func (r *RoleResolver) IsOwner(userID string) bool {
	normalized := NormalizeUserID(userID)
	for _, o := range r.owners {
		if o == normalized {
			return true
		}
	}
	return false
}

// Resolve returns the user's role. Group admin status comes from live group
// metadata; if the lookup fails we fail open to member rather than blocking
// interaction.
func (r *RoleResolver) Resolve(ctx context.Context, userID, groupID string, banned bool) Role {
	if r.IsOwner(userID) {
		return RoleOwner
	}
	if banned {
		return RoleBanned
	}
	if groupID == "" {
		return RoleMember
	}

	meta, err := r.directory.Group(ctx, groupID)
	if err != nil {
		log.Error().Err(err).Str("group", groupID).Msg("failed to fetch group metadata for role check")
		return RoleMember
	}
	for _, p := range meta.Participants {
		if p.ID == userID && p.Admin {
			return RoleAdmin
		}
	}
	return RoleMember
}

// IsGroupApproved gates all traffic from unvetted groups. Non-group chats
// and the control group are always approved; everything else needs an
// explicit approved, non-blocked entry.
func IsGroupApproved(doc *store.Document, controlGroupID, groupID string) bool {
	if groupID == "" {
		return true
	}
	if controlGroupID != "" && groupID == controlGroupID {
		return true
	}
	g, ok := doc.Groups[groupID]
	return ok && g.Approved && !g.Blocked
}
