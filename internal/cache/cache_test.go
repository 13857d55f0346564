package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)}
	c := NewCache()
	c.now = clock.Now
	return c, clock
}

type cachedPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache()

	require.NoError(t, c.Set("geocode:murphys", cachedPoint{38.1391, -120.4561}, time.Hour, "geocode"))

	var got cachedPoint
	found, err := c.Get("geocode:murphys", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedPoint{38.1391, -120.4561}, got)

	found, err = c.Get("geocode:arnold", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_Expiry(t *testing.T) {
	c, clock := newTestCache()
	require.NoError(t, c.Set("k", "v", time.Minute, "test"))

	clock.Advance(59 * time.Second)
	var got string
	found, err := c.Get("k", &got)
	require.NoError(t, err)
	assert.True(t, found)

	clock.Advance(2 * time.Second)
	found, err = c.Get("k", &got)
	require.NoError(t, err)
	assert.False(t, found, "Entry should expire after its TTL")

	stats := c.Stats()
	assert.Equal(t, Stats{TotalEntries: 1, StaleEntries: 1}, stats)
	assert.Equal(t, 1, c.CleanupStale())
	assert.Equal(t, Stats{}, c.Stats())
}

func TestCache_Errors(t *testing.T) {
	c, _ := newTestCache()

	err := c.Set("bad", make(chan int), time.Minute, "test")
	assert.Error(t, err, "Unserializable values are rejected")

	require.NoError(t, c.Set("text", "not a number", time.Minute, "test"))
	var n int
	found, err := c.Get("text", &n)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestCache_Delete(t *testing.T) {
	c, _ := newTestCache()
	require.NoError(t, c.Set("k", 1, time.Minute, "test"))

	c.Delete("k")
	var n int
	found, err := c.Get("k", &n)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_PeriodicCleanup(t *testing.T) {
	c := NewCache()
	require.NoError(t, c.Set("short", 1, time.Millisecond, "test"))
	require.NoError(t, c.Set("long", 2, time.Hour, "test"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.StartPeriodicCleanup(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		return c.Stats().TotalEntries == 1
	}, time.Second, 5*time.Millisecond)
}
