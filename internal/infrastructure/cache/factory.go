package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Backend is the query cache chosen at startup plus the Redis client it uses, if any.
// The client is shared with the distributed locker.
type Backend struct {
	Cache  shared.QueryCache
	Client *redis.Client
}

// Close releases the Redis client or stops the in-memory sweeper
func (b *Backend) Close() error {
	if b.Client != nil {
		return b.Client.Close()
	}
	if c, ok := b.Cache.(*InMemoryQueryCache); ok {
		return c.Close()
	}
	return nil
}

// NewBackend returns a Redis-backed cache when Redis is enabled and reachable,
// and falls back to the in-memory cache otherwise.
func NewBackend(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Backend {
	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory query cache")
		return &Backend{Cache: NewInMemoryQueryCache()}
	}

	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory query cache. "+
			"Cached reads and locks will not be shared between instances.",
			zap.Error(err),
		)
		return &Backend{Cache: NewInMemoryQueryCache()}
	}

	logger.Info("Using Redis query cache", zap.String("addr", cfg.Addr()))
	return &Backend{Cache: NewRedisQueryCache(client, logger), Client: client}
}
