package quota

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"scribed/internal/app/testutil"
)

func newCacheFixture(t *testing.T) (*RoleLimitCache, *testutil.MockRoleLimitDAO, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	inner := testutil.NewMockRoleLimitDAO()
	cache := NewRoleLimitCache(inner, client, time.Minute, nil)
	return cache, inner, mr
}

func TestRoleLimitCache_MissThenHit(t *testing.T) {
	cache, inner, _ := newCacheFixture(t)

	role := testutil.UnlimitedRole()
	role.DailyCost = 5.0
	inner.On("LimitsForUser", mock.Anything, int64(7)).Return(role, nil).Once()

	// First call misses and fills the cache.
	got, err := cache.LimitsForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.DailyCost)

	// Second call is served from Redis; the store is not asked again.
	got, err = cache.LimitsForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.DailyCost)
	inner.AssertNumberOfCalls(t, "LimitsForUser", 1)
}

func TestRoleLimitCache_EntryExpires(t *testing.T) {
	cache, inner, mr := newCacheFixture(t)

	role := testutil.UnlimitedRole()
	inner.On("LimitsForUser", mock.Anything, int64(7)).Return(role, nil).Twice()

	_, err := cache.LimitsForUser(context.Background(), 7)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.LimitsForUser(context.Background(), 7)
	require.NoError(t, err)
	inner.AssertNumberOfCalls(t, "LimitsForUser", 2)
}

func TestRoleLimitCache_Invalidate(t *testing.T) {
	cache, inner, _ := newCacheFixture(t)

	role := testutil.UnlimitedRole()
	inner.On("LimitsForUser", mock.Anything, int64(7)).Return(role, nil).Twice()

	_, err := cache.LimitsForUser(context.Background(), 7)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(context.Background(), 7))

	_, err = cache.LimitsForUser(context.Background(), 7)
	require.NoError(t, err)
	inner.AssertNumberOfCalls(t, "LimitsForUser", 2)
}

func TestRoleLimitCache_CorruptEntryRefetches(t *testing.T) {
	cache, inner, mr := newCacheFixture(t)

	require.NoError(t, mr.Set("rolelimits:user:7", "not json"))

	role := testutil.UnlimitedRole()
	inner.On("LimitsForUser", mock.Anything, int64(7)).Return(role, nil).Once()

	got, err := cache.LimitsForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestRoleLimitCache_RedisOutageFallsThrough(t *testing.T) {
	cache, inner, mr := newCacheFixture(t)
	mr.Close()

	role := testutil.UnlimitedRole()
	inner.On("LimitsForUser", mock.Anything, int64(7)).Return(role, nil)

	got, err := cache.LimitsForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestRoleLimitCache_NilClientReadsStoreDirectly(t *testing.T) {
	inner := testutil.NewMockRoleLimitDAO()
	cache := NewRoleLimitCache(inner, nil, 0, nil)

	role := testutil.UnlimitedRole()
	inner.On("LimitsForUser", mock.Anything, int64(7)).Return(role, nil)

	got, err := cache.LimitsForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.NoError(t, cache.Invalidate(context.Background(), 7))
}
