package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/query"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newCache(t *testing.T, clk *clock) *Cache[int] {
	t.Helper()
	opts := Options{StaleAfter: time.Minute, MaxRetries: 3, Backoff: time.Millisecond}
	if clk != nil {
		opts.Now = clk.Now
	}
	c := New[int]("test", opts, nil)
	t.Cleanup(c.Close)
	return c
}

func TestGetDeduplicatesConcurrentLoads(t *testing.T) {
	c := newCache(t, nil)
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), "page=1", load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}

	// повторный запрос — из кэша
	v, err := c.Get(context.Background(), "page=1", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.EqualValues(t, 1, calls.Load())
}

func TestGetRetriesTransientFailures(t *testing.T) {
	c := newCache(t, nil)
	var calls atomic.Int32
	_, err := c.Get(context.Background(), "k", func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, fault.Network("list buyers", errors.New("connection refused"))
	})
	require.Error(t, err)
	assert.Equal(t, fault.KindNetwork, fault.KindOf(err))
	assert.EqualValues(t, 4, calls.Load())
	_, ok := c.Peek("k")
	assert.False(t, ok)
}

func TestGetSucceedsAfterRetry(t *testing.T) {
	c := newCache(t, nil)
	var calls atomic.Int32
	v, err := c.Get(context.Background(), "k", func(ctx context.Context) (int, error) {
		if calls.Add(1) < 3 {
			return 0, errors.New("timeout")
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.EqualValues(t, 3, calls.Load())
}

func TestGetDoesNotRetryNotFound(t *testing.T) {
	c := newCache(t, nil)
	var calls atomic.Int32
	_, err := c.Get(context.Background(), "k", func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, fault.NotFound("get buyer")
	})
	assert.True(t, errors.Is(err, fault.ErrNotFound))
	assert.EqualValues(t, 1, calls.Load())
}

func TestStaleValueServedAndRefreshed(t *testing.T) {
	clk := &clock{t: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	c := newCache(t, clk)
	var n atomic.Int32
	load := func(ctx context.Context) (int, error) { return int(n.Add(1)), nil }

	v, err := c.Get(context.Background(), "k", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clk.Advance(2 * time.Minute)
	v, err = c.Get(context.Background(), "k", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v, "stale value is returned immediately")

	c.Close()
	v, ok := c.Peek("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestStaleEntryRefetchedAfterUpdateDuringRefresh(t *testing.T) {
	clk := &clock{t: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	c := newCache(t, clk)
	ctx := context.Background()
	var calls atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	slow := func(ctx context.Context) (int, error) {
		started <- struct{}{}
		<-release
		return int(calls.Add(1)), nil
	}

	c.Set("k", 100)
	clk.Advance(2 * time.Minute)
	v, err := c.Get(ctx, "k", slow)
	require.NoError(t, err)
	assert.Equal(t, 100, v)
	<-started

	c.Update(func(key string, v int) (int, bool) { return v + 1, true })
	close(release)
	c.Close()

	v, ok := c.Peek("k")
	require.True(t, ok)
	assert.Equal(t, 101, v, "refresh begun before the update is dropped")
	assert.EqualValues(t, 1, calls.Load())

	fast := func(ctx context.Context) (int, error) { return int(calls.Add(1)) + 500, nil }
	_, err = c.Get(ctx, "k", fast)
	require.NoError(t, err)
	c.Close()

	v, ok = c.Peek("k")
	require.True(t, ok)
	assert.Equal(t, 502, v, "entry still stale after the update is refetched")
	assert.EqualValues(t, 2, calls.Load())
}

func TestUpdateAndInvalidate(t *testing.T) {
	c := newCache(t, nil)
	ctx := context.Background()
	for _, k := range []string{"a", "b"} {
		_, err := c.Get(ctx, k, func(ctx context.Context) (int, error) { return 10, nil })
		require.NoError(t, err)
	}

	c.Update(func(key string, v int) (int, bool) {
		if key == "b" {
			return 0, false
		}
		return v + 1, true
	})
	v, ok := c.Peek("a")
	assert.True(t, ok)
	assert.Equal(t, 11, v)
	_, ok = c.Peek("b")
	assert.False(t, ok)

	c.Set("c", 5)
	assert.Equal(t, 2, c.Len())
	c.Delete("c")
	assert.Equal(t, 1, c.Len())

	c.Invalidate()
	assert.Zero(t, c.Len())
	v, err := c.Get(ctx, "a", func(ctx context.Context) (int, error) { return 99, nil })
	require.NoError(t, err)
	assert.Equal(t, 99, v)
}

func TestInvalidateDropsInflightResult(t *testing.T) {
	c := newCache(t, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		v, err := c.Get(context.Background(), "k", func(ctx context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, v)
	}()
	<-started
	c.Invalidate()
	close(release)
	<-done

	_, ok := c.Peek("k")
	assert.False(t, ok)
}

func TestPrependPatchesOnlyUnfilteredFirstPages(t *testing.T) {
	c := New[query.Page[string]]("buyers", Options{StaleAfter: time.Minute}, nil)
	t.Cleanup(c.Close)
	first := query.List{Page: 1, Limit: 10}.Key()
	second := query.List{Page: 2, Limit: 10}.Key()
	filtered := query.List{Page: 1, Limit: 10, Search: "acme"}.Key()
	small := query.List{Page: 1, Limit: 2}.Key()

	c.Set(first, query.Page[string]{Data: []string{"b", "c"}, Total: 12})
	c.Set(second, query.Page[string]{Data: []string{"x"}, Total: 12})
	c.Set(filtered, query.Page[string]{Data: []string{"b"}, Total: 1})
	c.Set(small, query.Page[string]{Data: []string{"b", "c"}, Total: 12})

	Prepend(c, "a")

	p, ok := c.Peek(first)
	require.True(t, ok)
	assert.Equal(t, query.Page[string]{Data: []string{"a", "b", "c"}, Total: 13}, p)
	p, ok = c.Peek(small)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, p.Data)
	_, ok = c.Peek(second)
	assert.False(t, ok)
	_, ok = c.Peek(filtered)
	assert.False(t, ok)
}
