//go:build integration

package identity

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/razi-ahmad/keycloak-openfga-event-publisher/pkg/testutil/containers"
)

func TestRedisRoleCache_AgainstServer(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	cache := NewRedisRoleCache(rc.Client)
	ctx := context.Background()

	got, err := cache.Get(ctx, "kc:role:acme:missing")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, cache.Set(ctx, "kc:role:acme:r1", "admin", time.Minute))
	got, err = cache.Get(ctx, "kc:role:acme:r1")
	require.NoError(t, err)
	assert.Equal(t, "admin", got)
}

func TestCachedLookup_AgainstServer(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	next := &countingLookup{names: map[string]string{"r1": "supervisor"}}
	lookup := NewCachedLookup(next, NewRedisRoleCache(rc.Client), time.Minute, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	for range 3 {
		name, err := lookup.LookupRoleNameByID(ctx, "acme", "r1")
		require.NoError(t, err)
		assert.Equal(t, "supervisor", name)
	}
	assert.Equal(t, 1, next.calls)
}
