package cache

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(ttl time.Duration) (*TTLCache[string, int], *time.Time) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := New[string, int](ttl, 0)
	c.now = func() time.Time { return clock }
	return c, &clock
}

func TestGetSetExpiry(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	defer c.Close()

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	*clock = clock.Add(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.evictExpired()
	assert.Zero(t, c.Len())
}

func TestZeroTTLDisablesCaching(t *testing.T) {
	c, _ := newTestCache(0)
	defer c.Close()

	c.Set("a", 1)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestGetOrLoad(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	defer c.Close()

	calls := 0
	load := func() (int, error) { calls++; return 7, nil }

	v, err := c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, calls)
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	defer c.Close()

	_, err := c.GetOrLoad("k", func() (int, error) { return 0, errors.New("db down") })
	require.Error(t, err)
	assert.Zero(t, c.Len())
}

func TestDeleteFunc(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	defer c.Close()

	c.Set("u1:r1", 1)
	c.Set("u1:r2", 2)
	c.Set("u2:r1", 3)

	c.DeleteFunc(func(k string) bool { return strings.HasPrefix(k, "u1:") })

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("u2:r1")
	assert.True(t, ok)
}

func TestCloseIsIdempotent(t *testing.T) {
	c := New[string, int](time.Minute, time.Millisecond)
	c.Close()
	assert.NotPanics(t, c.Close)
}
