package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"souk/common/cache"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Cache is an in-process cache.Cache. A negative ttl stores without expiry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	opts    cache.Options
	now     func() time.Time

	closed chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

func New(opts cache.Options) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		opts:    opts,
		now:     time.Now,
		closed:  make(chan struct{}),
	}

	if opts.CleanupInterval > 0 {
		c.wg.Add(1)
		go c.cleanupLoop(opts.CleanupInterval)
	}
	return c
}

// WithClock replaces the time source. Intended for tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.isClosed() {
		return cache.ErrClosed
	}
	k, err := c.opts.Key(key)
	if err != nil {
		return err
	}
	data, err := cache.Encode(value)
	if err != nil {
		return err
	}

	stored := make([]byte, len(data))
	copy(stored, data)

	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{data: stored}
	if d := c.opts.TTL(ttl); d > 0 {
		e.expiresAt = c.now().Add(d)
	}
	c.entries[k] = e
	return nil
}

func (c *Cache) Get(ctx context.Context, key string, value interface{}) error {
	if c.isClosed() {
		return cache.ErrClosed
	}
	k, err := c.opts.Key(key)
	if err != nil {
		return err
	}

	c.mu.RLock()
	e, ok := c.entries[k]
	now := c.now()
	c.mu.RUnlock()

	if !ok || e.expired(now) {
		return cache.ErrNotFound
	}
	return cache.Decode(e.data, value)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if c.isClosed() {
		return cache.ErrClosed
	}
	k, err := c.opts.Key(key)
	if err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.entries, k)
	c.mu.Unlock()
	return nil
}

func (c *Cache) Clear(ctx context.Context) error {
	if c.isClosed() {
		return cache.ErrClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opts.Namespace == "" {
		c.entries = make(map[string]entry)
		return nil
	}
	prefix := c.opts.Namespace + ":"
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

// Close stops the cleanup loop. Later calls return cache.ErrClosed.
func (c *Cache) Close() error {
	c.once.Do(func() { close(c.closed) })
	c.wg.Wait()
	return nil
}

// Len reports the number of stored entries, expired ones included until the
// next cleanup.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup removes expired entries.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Cleanup()
		case <-c.closed:
			return
		}
	}
}

func (c *Cache) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
