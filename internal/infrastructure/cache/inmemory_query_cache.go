package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rst/farmcontrol/internal/domain/shared"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryQueryCache implements shared.QueryCache for a single process.
// Values are stored JSON-encoded so callers never share mutable state with the cache.
type InMemoryQueryCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryQueryCache creates the cache and starts its expiry sweeper
func NewInMemoryQueryCache() *InMemoryQueryCache {
	c := &InMemoryQueryCache{
		entries:  make(map[string]entry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	c.wg.Add(1)
	go c.sweepLoop(time.Minute)
	return c
}

// GetOrLoad implements shared.QueryCache
func (c *InMemoryQueryCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, dest any, load func(ctx context.Context) (any, error)) error {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Before(e.expiresAt) && json.Unmarshal(e.data, dest) == nil {
		return nil
	}

	value, err := load(ctx)
	if err != nil {
		return err
	}
	if data, err := json.Marshal(value); err == nil && ttl > 0 {
		c.mu.Lock()
		c.entries[key] = entry{data: data, expiresAt: c.now().Add(ttl)}
		c.mu.Unlock()
	}
	return assign(dest, value)
}

// Invalidate implements shared.QueryCache
func (c *InMemoryQueryCache) Invalidate(_ context.Context, prefixes ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				delete(c.entries, key)
				break
			}
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *InMemoryQueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the sweeper
func (c *InMemoryQueryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryQueryCache) sweepLoop(interval time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopChan:
			return
		}
	}
}

func (c *InMemoryQueryCache) sweep() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Ensure InMemoryQueryCache implements QueryCache
var _ shared.QueryCache = (*InMemoryQueryCache)(nil)
