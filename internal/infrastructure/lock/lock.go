// Package lock implements shared.Locker on Redis (bsm/redislock) and in process.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	retryInterval = 50 * time.Millisecond
	retryAttempts = 3
	keyPrefix     = "lock:"
)

// ErrLockHeld is returned when the key is locked elsewhere
var ErrLockHeld = shared.ErrConcurrencyConflict

// New returns a Redis locker when client is non-nil and an in-process locker otherwise
func New(client *redis.Client, logger *zap.Logger) shared.Locker {
	if client == nil {
		return NewLocalLocker()
	}
	return NewRedisLocker(client, logger)
}

// RedisLocker holds locks in Redis so they are shared between instances
type RedisLocker struct {
	client *redislock.Client
	logger *zap.Logger
}

// NewRedisLocker creates a RedisLocker on an existing client
func NewRedisLocker(client *redis.Client, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{client: redislock.New(client), logger: logger}
}

// Acquire implements shared.Locker
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lk, err := l.client.Obtain(ctx, keyPrefix+key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(retryInterval), retryAttempts),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockHeld
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the request context may already be cancelled when release runs
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err := lk.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.logger.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}

// LocalLocker is a keyed try-lock with expiry for single-instance deployments
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]holder
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

type holder struct {
	token     uuid.UUID
	expiresAt time.Time
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		held:  make(map[string]holder),
		now:   time.Now,
		sleep: sleepContext,
	}
}

// Acquire implements shared.Locker
func (l *LocalLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	for attempt := 0; ; attempt++ {
		if token, ok := l.tryAcquire(key, ttl); ok {
			var once sync.Once
			return func() { once.Do(func() { l.release(key, token) }) }, nil
		}
		if attempt == retryAttempts {
			return nil, ErrLockHeld
		}
		if err := l.sleep(ctx, retryInterval); err != nil {
			return nil, err
		}
	}
}

func (l *LocalLocker) tryAcquire(key string, ttl time.Duration) (uuid.UUID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if h, ok := l.held[key]; ok && now.Before(h.expiresAt) {
		return uuid.Nil, false
	}
	token := uuid.New()
	l.held[key] = holder{token: token, expiresAt: now.Add(ttl)}
	return token, true
}

// release only drops the lock if it was not taken over after expiring
func (l *LocalLocker) release(key string, token uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.held[key]; ok && h.token == token {
		delete(l.held, key)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var (
	_ shared.Locker = (*RedisLocker)(nil)
	_ shared.Locker = (*LocalLocker)(nil)
)
