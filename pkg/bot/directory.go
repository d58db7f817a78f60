package bot

import (
	"context"

	"github.com/rs/zerolog/log"

	"caprisun/pkg/cache"
)

// Directory resolves group metadata and display names through the lookup
// cache. It is best-effort: entries can be stale and the cache may be empty
// after a restart; the durable store never lives here.
type Directory struct {
	transport Transport
	cache     cache.Cache
}

func NewDirectory(transport Transport, c cache.Cache) *Directory {
	return &Directory{transport: transport, cache: c}
}

func (d *Directory) Group(ctx context.Context, groupID string) (*GroupMetadata, error) {
	key := cache.Key("groupmeta", groupID)

	meta := &GroupMetadata{}
	if err := d.cache.GetJSON(ctx, key, meta); err == nil {
		return meta, nil
	}

	meta, err := d.transport.GroupMetadata(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := d.cache.SetJSON(ctx, key, meta, cache.GroupMetadataTTL); err != nil {
		log.Debug().Err(err).Str("group", groupID).Msg("failed to cache group metadata")
	}
	return meta, nil
}

// Invalidate drops the cached metadata for a group, e.g. after membership
// changes the bot caused itself.
func (d *Directory) Invalidate(ctx context.Context, groupID string) {
	if err := d.cache.Delete(ctx, cache.Key("groupmeta", groupID)); err != nil {
		log.Debug().Err(err).Str("group", groupID).Msg("failed to invalidate group metadata")
	}
}

// DisplayName returns a human label for a user, falling back to the cleaned
// id when the platform lookup fails. Names are cached per group: a nickname
// set in one group must not leak into another or into DMs.
func (d *Directory) DisplayName(ctx context.Context, groupID, userID string) string {
	key := cache.Key("name", userID)
	if groupID != "" {
		key = cache.Key("name", groupID, userID)
	}

	var name string
	if err := d.cache.GetJSON(ctx, key, &name); err == nil && name != "" {
		return name
	}

	name, err := d.transport.DisplayName(ctx, groupID, userID)
	if err != nil || name == "" {
		log.Debug().Err(err).Str("user", userID).Msg("display name lookup failed, using id")
		return NormalizeUserID(userID)
	}
	if err := d.cache.SetJSON(ctx, key, name, cache.DisplayNameTTL); err != nil {
		log.Debug().Err(err).Str("user", userID).Msg("failed to cache display name")
	}
	return name
}
