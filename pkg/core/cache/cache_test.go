package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, size int, ttl time.Duration) *Cache {
	t.Helper()
	c, err := New(Config{MaxItems: size, TTL: ttl})
	require.NoError(t, err)
	return c
}

func TestCache_GetSet(t *testing.T) {
	c := newCache(t, 4, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("1 + 2", 3)
	v, ok := c.Get("1 + 2")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	hits, misses, rate := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.InDelta(t, 50.0, rate, 0.001)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newCache(t, 2, 0)

	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a") // a becomes most recent
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Size())
	assert.Equal(t, int64(1), c.Evictions())
}

func TestCache_TTL(t *testing.T) {
	c := newCache(t, 8, time.Minute)

	c.SetWithTTL("short", 1, time.Millisecond)
	c.SetWithTTL("forever", 2, 0)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("forever")
	assert.True(t, ok)

	c.SetWithTTL("short2", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, c.Cleanup())
	assert.Equal(t, 1, c.Size())
	assert.Equal(t, int64(2), c.Expired(), "one dropped by Get, one by Cleanup")
	assert.Zero(t, c.Evictions(), "expiry is not a capacity eviction")
}

func TestCache_GetOrSet(t *testing.T) {
	c := newCache(t, 8, time.Minute)

	calls := 0
	compute := func() (interface{}, error) {
		calls++
		return "Plus(Int(1), Int(2))", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrSet("k", compute)
		require.NoError(t, err)
		assert.Equal(t, "Plus(Int(1), Int(2))", v)
	}
	assert.Equal(t, 1, calls)

	_, err := c.GetOrSet("bad", func() (interface{}, error) { return nil, errors.New("boom") })
	assert.EqualError(t, err, "boom")
	_, ok := c.Get("bad")
	assert.False(t, ok, "failures are not cached")
}

func TestCache_DeleteClear(t *testing.T) {
	c := newCache(t, 8, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
	assert.Zero(t, c.Evictions(), "explicit removal is not an eviction")
	assert.Zero(t, c.Expired())
}

func TestKey(t *testing.T) {
	assert.Len(t, Key("1 + 2", "right"), 64)
	assert.Equal(t, Key("1 + 2", "right"), Key("1 + 2", "right"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.NotEqual(t, Key("1 + 2", "right"), Key("1 + 2", "left"))
	assert.Len(t, ShortKey(Key("x")), 12)
	assert.Equal(t, "abc", ShortKey("abc"))
}
