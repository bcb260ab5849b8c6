package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/infrastructure/config"
	"go.uber.org/zap"
)

const scanBatch = 200

// RedisQueryCache implements shared.QueryCache on Redis with JSON values.
// Redis failures are logged and the loader result is served uncached.
type RedisQueryCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// NewRedisQueryCache wraps an existing client
func NewRedisQueryCache(client *redis.Client, logger *zap.Logger) *RedisQueryCache {
	return &RedisQueryCache{client: client, logger: logger}
}

// GetOrLoad implements shared.QueryCache
func (c *RedisQueryCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, dest any, load func(ctx context.Context) (any, error)) error {
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		jsonErr := json.Unmarshal(data, dest)
		if jsonErr == nil {
			return nil
		}
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(jsonErr))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := load(ctx)
	if err != nil {
		return err
	}

	if encoded, err := json.Marshal(value); err != nil {
		c.logger.Warn("Cache encode failed", zap.String("key", key), zap.Error(err))
	} else if err := c.client.Set(ctx, key, encoded, ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return assign(dest, value)
}

// Invalidate deletes every key under the prefixes using SCAN so Redis is never blocked
func (c *RedisQueryCache) Invalidate(ctx context.Context, prefixes ...string) error {
	var errs []error
	for _, prefix := range prefixes {
		iter := c.client.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
		batch := make([]string, 0, scanBatch)
		for iter.Next(ctx) {
			batch = append(batch, iter.Val())
			if len(batch) == scanBatch {
				errs = append(errs, c.client.Del(ctx, batch...).Err())
				batch = batch[:0]
			}
		}
		if len(batch) > 0 {
			errs = append(errs, c.client.Del(ctx, batch...).Err())
		}
		errs = append(errs, iter.Err())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	return nil
}

// Ensure RedisQueryCache implements QueryCache
var _ shared.QueryCache = (*RedisQueryCache)(nil)
