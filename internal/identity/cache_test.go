package identity

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	values map[string]string
	getErr error
	setErr error
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.values[key], nil
}

func (m *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.values[key] = value
	return nil
}

type countingLookup struct {
	names      map[string]string
	realms     map[string]string
	err        error
	calls      int
	realmCalls int
}

func (c *countingLookup) LookupRoleNameByID(_ context.Context, _, roleID string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.names[roleID], nil
}

func (c *countingLookup) LookupRealmNameByID(_ context.Context, realmID string) (string, error) {
	c.realmCalls++
	if c.err != nil {
		return "", c.err
	}
	return c.realms[realmID], nil
}

func TestCachedLookup_ReadThrough(t *testing.T) {
	cache := newMemoryCache()
	next := &countingLookup{names: map[string]string{"r1": "supervisor"}}
	lookup := NewCachedLookup(next, cache, time.Minute, slog.New(slog.DiscardHandler))

	name, err := lookup.LookupRoleNameByID(context.Background(), "acme", "r1")
	require.NoError(t, err)
	assert.Equal(t, "supervisor", name)
	assert.Equal(t, 1, next.calls)

	// Second lookup is served from the cache.
	name, err = lookup.LookupRoleNameByID(context.Background(), "acme", "r1")
	require.NoError(t, err)
	assert.Equal(t, "supervisor", name)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, cache.sets)
}

func TestCachedLookup_FailuresAreNeverCached(t *testing.T) {
	cache := newMemoryCache()
	next := &countingLookup{err: errors.New("identity store down")}
	lookup := NewCachedLookup(next, cache, time.Minute, slog.New(slog.DiscardHandler))

	_, err := lookup.LookupRoleNameByID(context.Background(), "acme", "r1")
	require.Error(t, err)
	_, err = lookup.LookupRoleNameByID(context.Background(), "acme", "r1")
	require.Error(t, err)

	assert.Equal(t, 2, next.calls)
	assert.Zero(t, cache.sets)
}

func TestCachedLookup_CacheOutageDegradesToDirect(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	next := &countingLookup{names: map[string]string{"r1": "supervisor"}}
	lookup := NewCachedLookup(next, cache, time.Minute, slog.New(slog.DiscardHandler))

	name, err := lookup.LookupRoleNameByID(context.Background(), "acme", "r1")
	require.NoError(t, err)
	assert.Equal(t, "supervisor", name)
}

func TestCachedLookup_RealmNamesAreCached(t *testing.T) {
	cache := newMemoryCache()
	next := &countingLookup{realms: map[string]string{"realm-uuid": "acme"}}
	lookup := NewCachedLookup(next, cache, time.Minute, slog.New(slog.DiscardHandler))

	for range 2 {
		name, err := lookup.LookupRealmNameByID(context.Background(), "realm-uuid")
		require.NoError(t, err)
		assert.Equal(t, "acme", name)
	}
	assert.Equal(t, 1, next.realmCalls)
	assert.Equal(t, "acme", cache.values[realmCacheKey("realm-uuid")])
}

func TestRoleCacheKey_IsRealmScoped(t *testing.T) {
	assert.NotEqual(t, roleCacheKey("acme", "r1"), roleCacheKey("globex", "r1"))
}
