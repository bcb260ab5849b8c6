package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func noSleep(context.Context, time.Duration) error { return nil }

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire conflicts until release", func(t *testing.T) {
		l := NewLocalLocker()
		l.sleep = noSleep

		release, err := l.Acquire(ctx, "sale:1", time.Minute)
		require.NoError(t, err)

		_, err = l.Acquire(ctx, "sale:1", time.Minute)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		other, err := l.Acquire(ctx, "sale:2", time.Minute)
		require.NoError(t, err)
		other()

		release()
		release()
		again, err := l.Acquire(ctx, "sale:1", time.Minute)
		require.NoError(t, err)
		again()
	})

	t.Run("expired lock can be taken over and stale release is ignored", func(t *testing.T) {
		l := NewLocalLocker()
		l.sleep = noSleep
		now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		stale, err := l.Acquire(ctx, "k", time.Second)
		require.NoError(t, err)

		now = now.Add(2 * time.Second)
		_, err = l.Acquire(ctx, "k", time.Minute)
		require.NoError(t, err)

		stale()
		_, err = l.Acquire(ctx, "k", time.Minute)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		l := NewLocalLocker()
		_, err := l.Acquire(ctx, "k", time.Minute)
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = l.Acquire(cancelled, "k", time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("serializes concurrent holders", func(t *testing.T) {
		l := NewLocalLocker()
		var inside, maxInside, acquired int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := l.Acquire(ctx, "shared", time.Minute)
				if err != nil {
					return
				}
				atomic.AddInt32(&acquired, 1)
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				release()
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), maxInside)
		assert.GreaterOrEqual(t, acquired, int32(1))
	})
}

func TestNew(t *testing.T) {
	assert.IsType(t, &LocalLocker{}, New(nil, zaptest.NewLogger(t)))
}
