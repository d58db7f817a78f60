package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.SetJSON(ctx, "key1", payload{Name: "Alice"}, time.Minute))

	var got payload
	require.NoError(t, c.GetJSON(ctx, "key1", &got))
	assert.Equal(t, "Alice", got.Name)
}

func TestMemoryCache_MissAndExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	var got string
	assert.ErrorIs(t, c.GetJSON(ctx, "absent", &got), ErrCacheMiss)

	require.NoError(t, c.SetJSON(ctx, "short", "value", -time.Second))
	assert.ErrorIs(t, c.GetJSON(ctx, "short", &got), ErrCacheMiss, "expired entries read as misses")
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "key1", "value", time.Minute))
	require.NoError(t, c.Delete(ctx, "key1"))

	var got string
	assert.ErrorIs(t, c.GetJSON(ctx, "key1", &got), ErrCacheMiss)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "groupmeta:group1", Key("groupmeta", "group1"))
	assert.Equal(t, "name:user1", Key("name", "user1"))
}
