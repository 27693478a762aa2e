// File: internal/session/redis_cache.go
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "session:"

// redisCache stores session state in Redis with a TTL matching the session
// lifetime. Read-side Redis failures degrade to a cache miss so that an
// unreachable Redis renders the user logged out rather than erroring.
type redisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache creates a Redis-backed session cache.
func NewRedisCache(client *redis.Client, logger *zap.Logger) Cache {
	return &redisCache{client: client, logger: logger.Named("SessionRedisCache")}
}

func (c *redisCache) Get(ctx context.Context, handle string) (*State, error) {
	if handle == "" {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, redisKeyPrefix+handle).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		c.logger.Warn("Redis read failed, treating session as absent", zap.Error(err))
		return nil, nil
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		c.logger.Warn("Cached session state corrupt, treating as absent", zap.Error(err))
		return nil, nil
	}
	if !st.ExpiresAt.IsZero() && time.Now().After(st.ExpiresAt) {
		return nil, nil
	}
	return &st, nil
}

func (c *redisCache) Set(ctx context.Context, state *State) error {
	if state == nil || state.Handle == "" {
		return nil
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	ttl := time.Until(state.ExpiresAt)
	if state.ExpiresAt.IsZero() || ttl <= 0 {
		ttl = time.Hour
	}
	return c.client.Set(ctx, redisKeyPrefix+state.Handle, raw, ttl).Err()
}

func (c *redisCache) Clear(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	return c.client.Del(ctx, redisKeyPrefix+handle).Err()
}

// PurgeExpired is a no-op for Redis: entries carry a TTL and expire natively.
func (c *redisCache) PurgeExpired(context.Context) (int, error) {
	return 0, nil
}
