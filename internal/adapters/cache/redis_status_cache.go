package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"separation-route-service/internal/domain"
	"separation-route-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

const statusKey = "routes:status"

// RedisStatusCache is a short-TTL cache for the polled route-status
// list. The TTL stays below the poll interval, so a transition is
// visible on every screen within one poll cycle even without an
// explicit invalidate.
type RedisStatusCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStatusCache(client *redis.Client, ttl time.Duration) *RedisStatusCache {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &RedisStatusCache{Client: client, TTL: ttl}
}

func (c *RedisStatusCache) Get(ctx context.Context) (_ []*domain.Route, _ bool, err error) {
	defer obs.Time(ctx, "status.cache.Get")(&err)

	payload, err := c.Client.Get(ctx, statusKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("status cache: get: %w", err)
	}

	var routes []*domain.Route
	if err := json.Unmarshal(payload, &routes); err != nil {
		return nil, false, fmt.Errorf("status cache: decode: %w", err)
	}

	return routes, true, nil
}

func (c *RedisStatusCache) Set(ctx context.Context, routes []*domain.Route) (err error) {
	defer obs.Time(ctx, "status.cache.Set")(&err)

	payload, err := json.Marshal(routes)
	if err != nil {
		return fmt.Errorf("status cache: encode: %w", err)
	}

	if err := c.Client.Set(ctx, statusKey, payload, c.TTL).Err(); err != nil {
		return fmt.Errorf("status cache: set: %w", err)
	}

	return nil
}

func (c *RedisStatusCache) Invalidate(ctx context.Context) error {
	if err := c.Client.Del(ctx, statusKey).Err(); err != nil {
		return fmt.Errorf("status cache: del: %w", err)
	}
	return nil
}
