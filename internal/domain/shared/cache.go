package shared

import (
	"context"
	"time"
)

// QueryCache is a short-lived read-through cache for aggregate reads.
// Implementations must never turn a cache failure into a request failure:
// on a broken backend GetOrLoad falls through to the loader.
type QueryCache interface {
	// GetOrLoad fills dest from the cache, or calls load, stores its result
	// under key for ttl and copies it into dest.
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, dest any, load func(ctx context.Context) (any, error)) error
	// Invalidate removes every key starting with one of the prefixes
	Invalidate(ctx context.Context, prefixes ...string) error
}

// Locker provides mutual exclusion across requests (and processes when backed by Redis)
type Locker interface {
	// Acquire obtains the lock for key. The returned release func is safe to call once.
	// Returns ErrConcurrencyConflict when the lock is held elsewhere.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
