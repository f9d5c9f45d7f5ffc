package cache

import (
	"context"
	"encoding"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("key not found in cache")
	ErrInvalidValue = errors.New("invalid value for cache")
	ErrClosed       = errors.New("cache is closed")
	ErrInvalidKey   = errors.New("invalid cache key")
)

// Cache stores encoded values by key. Values are written as strings, byte
// slices or encoding.BinaryMarshaler and read back into *string, *[]byte or
// encoding.BinaryUnmarshaler.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Get(ctx context.Context, key string, value interface{}) error

	Delete(ctx context.Context, key string) error

	Clear(ctx context.Context) error

	Close() error
}

type Options struct {
	// DefaultTTL applies when Set is called with a zero ttl.
	DefaultTTL time.Duration

	CleanupInterval time.Duration

	// Namespace prefixes every key. Clear only removes namespaced keys.
	Namespace string

	RedisAddr string

	RedisPassword string

	RedisDB int
}

func DefaultOptions() Options {
	return Options{
		DefaultTTL:      time.Hour,
		CleanupInterval: time.Minute * 5,
	}
}

// TTL resolves the expiry for a Set call.
func (o Options) TTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return o.DefaultTTL
	}
	return ttl
}

// Key validates key and applies the namespace.
func (o Options) Key(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	if o.Namespace == "" {
		return key, nil
	}
	return o.Namespace + ":" + key, nil
}

// Encode converts a value accepted by Set to bytes.
func Encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case encoding.BinaryMarshaler:
		return v.MarshalBinary()
	default:
		return nil, ErrInvalidValue
	}
}

// Decode writes data into a destination accepted by Get.
func Decode(data []byte, value interface{}) error {
	switch v := value.(type) {
	case *string:
		*v = string(data)
	case *[]byte:
		*v = append((*v)[:0], data...)
	case encoding.BinaryUnmarshaler:
		return v.UnmarshalBinary(data)
	default:
		return ErrInvalidValue
	}
	return nil
}
