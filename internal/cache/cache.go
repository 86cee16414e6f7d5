package cache

import (
	"context"
	"time"
)

// Cache is the key/value store behind admin sessions. The abstraction allows
// swapping between the memory cache (development, tests) and Redis
// (production) without changing the session service.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// CacheError is a sentinel error type for cache failures.
type CacheError string

func (e CacheError) Error() string { return string(e) }

// ErrCacheMiss indicates the key was not found in cache.
const ErrCacheMiss CacheError = "cache miss"
