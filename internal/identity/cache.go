package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoleCache stores resolved role names keyed by realm and role id.
type RoleCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisRoleCache backs RoleCache with Redis.
type RedisRoleCache struct {
	client *redis.Client
}

func NewRedisRoleCache(client *redis.Client) *RedisRoleCache {
	return &RedisRoleCache{client: client}
}

func (c *RedisRoleCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (c *RedisRoleCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// CachedLookup is a read-through cache in front of another Lookup. Only
// successful role-name resolutions are cached; failures always pass through
// so they keep failing loudly. Cache outages degrade to direct lookups.
type CachedLookup struct {
	next   Lookup
	cache  RoleCache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedLookup(next Lookup, cache RoleCache, ttl time.Duration, logger *slog.Logger) *CachedLookup {
	return &CachedLookup{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "identity-cache"),
	}
}

func (c *CachedLookup) LookupRoleNameByID(ctx context.Context, realm, roleID string) (string, error) {
	key := roleCacheKey(realm, roleID)

	if cached, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Debug("role cache read failed, falling through", "key", key, "error", err)
	} else if cached != "" {
		return cached, nil
	}

	name, err := c.next.LookupRoleNameByID(ctx, realm, roleID)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, key, name, c.ttl); err != nil {
		c.logger.Debug("role cache write failed", "key", key, "error", err)
	}
	return name, nil
}

// LookupRealmNameByID caches like role names do: every published event needs
// the realm name, and realm renames are effectively deploy-time events.
func (c *CachedLookup) LookupRealmNameByID(ctx context.Context, realmID string) (string, error) {
	key := realmCacheKey(realmID)

	if cached, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Debug("realm cache read failed, falling through", "key", key, "error", err)
	} else if cached != "" {
		return cached, nil
	}

	name, err := c.next.LookupRealmNameByID(ctx, realmID)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, key, name, c.ttl); err != nil {
		c.logger.Debug("realm cache write failed", "key", key, "error", err)
	}
	return name, nil
}

func roleCacheKey(realm, roleID string) string {
	return fmt.Sprintf("kc:role:%s:%s", realm, roleID)
}

func realmCacheKey(realmID string) string {
	return fmt.Sprintf("kc:realm:%s", realmID)
}
