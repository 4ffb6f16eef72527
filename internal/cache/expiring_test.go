package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func TestExpiring_SetGet_NoTTL(t *testing.T) {
	c := New[string, int]()
	c.Set("a", 1, 0)

	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 1, c.Len())
}

func TestExpiring_TTL_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := NewWithClock[string, string](clock.Now)

	c.Set("k", "v", time.Second)
	_, ok := c.Get("k")
	require.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok = c.Get("k")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())

	require.Equal(t, 1, c.PurgeExpired())
	require.Empty(t, c.items)
}

func TestExpiring_SetIfAbsent_ActsAsGate(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := NewWithClock[string, struct{}](clock.Now)

	require.True(t, c.SetIfAbsent("p/u", struct{}{}, 50*time.Millisecond))
	require.False(t, c.SetIfAbsent("p/u", struct{}{}, 50*time.Millisecond))

	clock.Advance(49 * time.Millisecond)
	require.False(t, c.SetIfAbsent("p/u", struct{}{}, 50*time.Millisecond))

	clock.Advance(time.Millisecond)
	require.True(t, c.SetIfAbsent("p/u", struct{}{}, 50*time.Millisecond))
}

func TestExpiring_RangeSkipsExpired(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := NewWithClock[int, int](clock.Now)
	c.Set(1, 10, time.Second)
	c.Set(2, 20, 0)
	clock.Advance(time.Minute)

	seen := map[int]int{}
	c.Range(func(k, v int) bool {
		seen[k] = v
		return true
	})
	require.Equal(t, map[int]int{2: 20}, seen)
}

func TestExpiring_ConcurrentAccess(t *testing.T) {
	c := New[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < 100; r++ {
				c.Set(i, r, 0)
				_, _ = c.Get(i)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 50, c.Len())
}
