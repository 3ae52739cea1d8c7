package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcaplan/orcaplan-backend/internal/cache"
)

func TestTTLCache_SetGet(t *testing.T) {
	c := cache.NewTTLCache[string](time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
	assert.Equal(t, 1, c.Size())
}

func TestTTLCache_Expiry(t *testing.T) {
	c := cache.NewTTLCache[int](10 * time.Millisecond)

	c.Set("k", 42)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
	// The expired entry was dropped on read.
	assert.Equal(t, 0, c.Size())
}

func TestTTLCache_Invalidate(t *testing.T) {
	c := cache.NewTTLCache[[]string](time.Minute)

	c.Set("filtros", []string{"SP", "RJ"})
	c.Invalidate("filtros")

	_, ok := c.Get("filtros")
	assert.False(t, ok)
}

func TestTTLCache_OverwriteRefreshes(t *testing.T) {
	c := cache.NewTTLCache[int](time.Minute)

	c.Set("k", 1)
	c.Set("k", 2)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, c.Size())
}
