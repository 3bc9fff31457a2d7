package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a thread-safe in-process Cache. It backs tests and single-node
// development setups; production deployments use Redis so that instances
// share one cache.
type Memory struct {
	mu  sync.RWMutex
	now func() time.Time
	m   map[string]entry
}

// NewMemory initializes an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]entry), now: time.Now}
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.m[key]
	if !ok {
		return nil, ErrMiss
	}
	// Expired entries count as absent even before eviction runs.
	if !c.now().Before(e.expiresAt) {
		return nil, ErrMiss
	}

	val := make([]byte, len(e.value))
	copy(val, e.value)
	return val, nil
}

func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = entry{value: stored, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *Memory) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.m, k)
	}
	return nil
}

func (c *Memory) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.m {
		if strings.HasPrefix(k, prefix) {
			delete(c.m, k)
		}
	}
	return nil
}

// Keys returns the live (non-expired) keys, for inspection in tests.
func (c *Memory) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.m))
	for k, e := range c.m {
		if c.now().Before(e.expiresAt) {
			keys = append(keys, k)
		}
	}
	return keys
}
