// Package cache defines the key-value cache contract used by the people
// service's read-through paths, plus its Redis and in-memory backends.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or past its TTL.
var ErrMiss = errors.New("cache miss")

// Cache is the invalidation-capable key-value store the services read through.
// The cache is advisory: callers must treat any error from Set or the delete
// operations as non-fatal, since the record store holds authoritative state.
type Cache interface {
	// Get returns the value stored under key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with a time-to-live.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeleteByPrefix removes every live key with the given prefix. The
	// enumeration and the deletes are not atomic with concurrent writers.
	DeleteByPrefix(ctx context.Context, prefix string) error
}
