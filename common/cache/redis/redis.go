package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"souk/common/cache"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 500

type Cache struct {
	client *redis.Client
	opts   cache.Options
}

func New(opts cache.Options) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})

	return &Cache{client: client, opts: opts}
}

// Ping checks that the server is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis %s: %w", c.opts.RedisAddr, err)
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	k, err := c.opts.Key(key)
	if err != nil {
		return err
	}
	data, err := cache.Encode(value)
	if err != nil {
		return err
	}
	// go-redis treats zero as no expiry and -1 as KEEPTTL.
	expiry := c.opts.TTL(ttl)
	if expiry < 0 {
		expiry = 0
	}
	return c.client.Set(ctx, k, data, expiry).Err()
}

func (c *Cache) Get(ctx context.Context, key string, value interface{}) error {
	k, err := c.opts.Key(key)
	if err != nil {
		return err
	}
	val, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return cache.ErrNotFound
	}
	if err != nil {
		return err
	}

	return cache.Decode(val, value)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	k, err := c.opts.Key(key)
	if err != nil {
		return err
	}
	return c.client.Del(ctx, k).Err()
}

// Clear drops the namespace's keys, or the whole database when no namespace
// is configured.
func (c *Cache) Clear(ctx context.Context) error {
	if c.opts.Namespace == "" {
		return c.client.FlushDB(ctx).Err()
	}

	iter := c.client.Scan(ctx, 0, c.opts.Namespace+":*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
