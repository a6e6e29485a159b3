package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/rocase/pkg/logger"
)

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewWithClient(client, logger.Nop())
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestCache_SetExists(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	n, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	n, err = c.Exists(ctx, "k", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	mr.FastForward(2 * time.Minute)
	n, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRevocations(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	rev := NewRevocations(c)

	revoked, err := rev.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, rev.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = rev.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = rev.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocations_ExpiredTokenIsNotStored(t *testing.T) {
	c, mr := setupCache(t)
	rev := NewRevocations(c)

	require.NoError(t, rev.Revoke(context.Background(), "old", time.Now().Add(-time.Minute)))
	assert.Empty(t, mr.Keys())
}

func TestCache_HealthFailsWhenServerStops(t *testing.T) {
	c, mr := setupCache(t)

	require.NoError(t, c.Health(context.Background()))
	mr.Close()
	assert.Error(t, c.Health(context.Background()))
}
