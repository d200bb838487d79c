package cache_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tripwise-ai/tripwise/pkg/admission/cache"
)

func newTestCache(maxEntries int, now *time.Time) *cache.Cache {
	return cache.New(&cache.Opts{
		MaxEntries:   maxEntries,
		TimeProvider: func() time.Time { return *now },
	})
}

func TestCache_SetAndGet(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCache(10, &now)

	c.Set("translation", "en:fr:hello", "bonjour", time.Minute)

	v, ok := c.Get("translation", "en:fr:hello")
	assert.True(t, ok)
	assert.Equal(t, "bonjour", v)

	_, ok = c.Get("translation", "en:fr:goodbye")
	assert.False(t, ok)
}

func TestCache_NamespacesDoNotCollide(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCache(10, &now)

	c.Set("translation", "key", "a", time.Minute)
	c.Set("culture", "key", "b", time.Minute)

	v, _ := c.Get("translation", "key")
	assert.Equal(t, "a", v)
	v, _ = c.Get("culture", "key")
	assert.Equal(t, "b", v)
}

func TestCache_ExpiredEntryIsMissAndRemoved(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCache(10, &now)

	c.Set("poi", "paris:", "eiffel", time.Minute)

	now = now.Add(2 * time.Minute)
	_, ok := c.Get("poi", "paris:")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	// The entry must not resurrect once removed.
	now = now.Add(-2 * time.Minute)
	_, ok = c.Get("poi", "paris:")
	assert.False(t, ok)
}

func TestCache_EvictsOldestInsertionAtCapacity(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCache(3, &now)

	c.Set("ns", "a", 1, time.Minute)
	c.Set("ns", "b", 2, time.Minute)
	c.Set("ns", "c", 3, time.Minute)
	c.Set("ns", "d", 4, time.Minute)

	assert.Equal(t, 3, c.Len())
	_, ok := c.Get("ns", "a")
	assert.False(t, ok)
	_, ok = c.Get("ns", "d")
	assert.True(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestCache_GetHitRefreshesEvictionOrder(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCache(3, &now)

	c.Set("ns", "a", 1, time.Minute)
	c.Set("ns", "b", 2, time.Minute)
	c.Set("ns", "c", 3, time.Minute)

	// Touching "a" moves it to the back, so "b" is now the oldest.
	_, ok := c.Get("ns", "a")
	assert.True(t, ok)

	c.Set("ns", "d", 4, time.Minute)
	_, ok = c.Get("ns", "a")
	assert.True(t, ok)
	_, ok = c.Get("ns", "b")
	assert.False(t, ok)
}

func TestCache_UpdateExistingKeyDoesNotEvict(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCache(2, &now)

	c.Set("ns", "a", 1, time.Minute)
	c.Set("ns", "b", 2, time.Minute)
	c.Set("ns", "a", 10, time.Minute)

	assert.Equal(t, 2, c.Len())
	v, _ := c.Get("ns", "a")
	assert.Equal(t, 10, v)
	assert.Equal(t, uint64(0), c.Stats().Evictions)
}

func TestCache_ClearNamespace(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCache(10, &now)

	for i := 0; i < 3; i++ {
		c.Set("poi", fmt.Sprintf("k%d", i), i, time.Minute)
	}
	c.Set("stays", "k", "v", time.Minute)

	assert.Equal(t, 3, c.ClearNamespace("poi"))
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("stays", "k")
	assert.True(t, ok)
}

func TestCache_StatsAreMonotonic(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCache(10, &now)

	c.Set("ns", "a", 1, time.Minute)
	c.Get("ns", "a")
	c.Get("ns", "missing")

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Sets)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)

	// Expiry counts as a miss too.
	now = now.Add(2 * time.Minute)
	c.Get("ns", "a")
	assert.Equal(t, uint64(2), c.Stats().Misses)
}
