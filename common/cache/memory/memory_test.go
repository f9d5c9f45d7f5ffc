package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"souk/common/cache"
	"souk/common/cache/memory"
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
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type payload struct{ raw string }

func (p payload) MarshalBinary() ([]byte, error) { return []byte(p.raw), nil }

func (p *payload) UnmarshalBinary(b []byte) error {
	p.raw = string(b)
	return nil
}

func newCache(t *testing.T, opts cache.Options) (*memory.Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)}
	c := memory.New(opts).WithClock(clock.Now)
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

func TestCache_RoundTripValueKinds(t *testing.T) {
	c, _ := newCache(t, cache.Options{DefaultTTL: time.Minute})
	ctx := context.Background()

	if err := c.Set(ctx, "s", "hello", 0); err != nil {
		t.Fatal(err)
	}
	var s string
	if err := c.Get(ctx, "s", &s); err != nil || s != "hello" {
		t.Errorf("Get(string) = %q, %v", s, err)
	}

	if err := c.Set(ctx, "b", []byte{1, 2, 3}, 0); err != nil {
		t.Fatal(err)
	}
	var b []byte
	if err := c.Get(ctx, "b", &b); err != nil || len(b) != 3 || b[2] != 3 {
		t.Errorf("Get([]byte) = %v, %v", b, err)
	}

	if err := c.Set(ctx, "p", payload{raw: "x"}, 0); err != nil {
		t.Fatal(err)
	}
	var p payload
	if err := c.Get(ctx, "p", &p); err != nil || p.raw != "x" {
		t.Errorf("Get(BinaryUnmarshaler) = %+v, %v", p, err)
	}
}

func TestCache_InvalidValuesAndKeys(t *testing.T) {
	c, _ := newCache(t, cache.DefaultOptions())
	ctx := context.Background()

	if err := c.Set(ctx, "n", 42, 0); !errors.Is(err, cache.ErrInvalidValue) {
		t.Errorf("Set(int) error = %v, want ErrInvalidValue", err)
	}
	if err := c.Set(ctx, "", "v", 0); !errors.Is(err, cache.ErrInvalidKey) {
		t.Errorf("Set(empty key) error = %v, want ErrInvalidKey", err)
	}
	_ = c.Set(ctx, "k", "v", 0)
	var n int
	if err := c.Get(ctx, "k", &n); !errors.Is(err, cache.ErrInvalidValue) {
		t.Errorf("Get(*int) error = %v, want ErrInvalidValue", err)
	}
}

func TestCache_StoredBytesAreCopied(t *testing.T) {
	c, _ := newCache(t, cache.DefaultOptions())
	ctx := context.Background()

	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'z'

	var got string
	_ = c.Get(ctx, "k", &got)
	if got != "abc" {
		t.Errorf("Get() = %q, want abc", got)
	}
}

func TestCache_Expiry(t *testing.T) {
	c, clock := newCache(t, cache.Options{DefaultTTL: time.Minute})
	ctx := context.Background()

	_ = c.Set(ctx, "default", "v", 0)
	_ = c.Set(ctx, "short", "v", time.Second)
	_ = c.Set(ctx, "forever", "v", -1)

	clock.Advance(2 * time.Second)
	var got string
	if err := c.Get(ctx, "short", &got); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("short after 2s: error = %v, want ErrNotFound", err)
	}
	if err := c.Get(ctx, "default", &got); err != nil {
		t.Errorf("default after 2s: error = %v", err)
	}

	clock.Advance(time.Hour)
	if err := c.Get(ctx, "default", &got); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("default after 1h: error = %v, want ErrNotFound", err)
	}
	if err := c.Get(ctx, "forever", &got); err != nil {
		t.Errorf("forever after 1h: error = %v", err)
	}

	c.Cleanup()
	if c.Len() != 1 {
		t.Errorf("Len() after Cleanup = %d, want 1", c.Len())
	}
}

func TestCache_DeleteAndClearNamespace(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, cache.Options{Namespace: "estimates"})

	_ = c.Set(ctx, "a", "1", 0)
	_ = c.Set(ctx, "b", "2", 0)
	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	var got string
	if err := c.Get(ctx, "a", &got); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("Get(a) error = %v, want ErrNotFound", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
}

func TestCache_Closed(t *testing.T) {
	c := memory.New(cache.Options{CleanupInterval: time.Millisecond})
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	ctx := context.Background()
	if err := c.Set(ctx, "k", "v", 0); !errors.Is(err, cache.ErrClosed) {
		t.Errorf("Set() after Close error = %v, want ErrClosed", err)
	}
	var got string
	if err := c.Get(ctx, "k", &got); !errors.Is(err, cache.ErrClosed) {
		t.Errorf("Get() after Close error = %v, want ErrClosed", err)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c, _ := newCache(t, cache.Options{DefaultTTL: time.Minute})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, "k", "v", 0)
				var got string
				_ = c.Get(ctx, "k", &got)
			}
		}()
	}
	wg.Wait()
}
