// Package cache is the best-effort lookup cache for group metadata and
// display names. It is never the durable store: entries may be stale and the
// cache may be empty after a restart.
package cache

import (
	"context"
	"sync"
	"time"
)

const (
	GroupMetadataTTL = 5 * time.Minute
	DisplayNameTTL   = 6 * time.Hour
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MemoryCache is the fallback used when no Redis URL is configured. Expired
// entries are dropped lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}}
}
