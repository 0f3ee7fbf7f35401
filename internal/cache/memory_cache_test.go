package cache

import (
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := t.Context()
	cfg := &config.CacheConfig{DefaultTTL: time.Minute, MemoryMaxEntries: 2}

	newCache := func(t *testing.T) (*memoryCache, *time.Time) {
		t.Helper()
		c, err := NewMemoryCache(cfg)
		require.NoError(t, err)

		mc := c.(*memoryCache)
		now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		mc.now = func() time.Time { return now }

		return mc, &now
	}

	t.Run("Round trip", func(t *testing.T) {
		c, _ := newCache(t)

		require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, 0))

		var got map[string]int
		found, err := c.Get(ctx, "k", &got)

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, map[string]int{"a": 1}, got)
	})

	t.Run("Entries expire after their TTL", func(t *testing.T) {
		c, now := newCache(t)
		require.NoError(t, c.Set(ctx, "k", "v", 30*time.Second))

		*now = now.Add(31 * time.Second)

		var got string
		found, err := c.Get(ctx, "k", &got)

		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Least recently used entry is evicted", func(t *testing.T) {
		c, _ := newCache(t)
		require.NoError(t, c.Set(ctx, "a", 1, 0))
		require.NoError(t, c.Set(ctx, "b", 2, 0))
		require.NoError(t, c.Set(ctx, "c", 3, 0))

		var got int
		found, _ := c.Get(ctx, "a", &got)

		assert.False(t, found)
	})

	t.Run("Delete", func(t *testing.T) {
		c, _ := newCache(t)
		require.NoError(t, c.Set(ctx, "k", "v", 0))
		require.NoError(t, c.Delete(ctx, "k"))

		var got string
		found, _ := c.Get(ctx, "k", &got)

		assert.False(t, found)
	})

	t.Run("Marshal error", func(t *testing.T) {
		c, _ := newCache(t)
		assert.Error(t, c.Set(ctx, "k", make(chan int), 0))
	})
}
