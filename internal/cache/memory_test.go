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

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryCache_GetSetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemoryCache()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	require.NoError(t, c.Delete(ctx, "a", "b", "never-set"))
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemoryCache()

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestMemoryCache_Expiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewMemoryCacheWithClock(clock.Now)

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("v"), 0))

	clock.Advance(59 * time.Second)
	_, err := c.Get(ctx, "short")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = c.Get(ctx, "forever")
	assert.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_Incr(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemoryCache()

	n, err := c.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, c.Set(ctx, "text", []byte("abc"), 0))
	_, err = c.Incr(ctx, "text")
	assert.Error(t, err)
}

func TestMemoryCache_IncrConcurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemoryCache()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Incr(ctx, "n")
		}()
	}
	wg.Wait()

	got, err := c.Get(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, "50", string(got))
}
