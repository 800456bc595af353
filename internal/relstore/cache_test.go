package relstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/relations"
)

type countingStore struct {
	calls int
	rules []relations.Rule
	err   error
}

func (c *countingStore) Query(ctx context.Context, from, to string) ([]relations.Rule, error) {
	c.calls++
	return c.rules, c.err
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisKVStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisKVStore(client)
}

func TestCachedStore_Query_ReadThrough(t *testing.T) {
	mr, kv := setupTestRedis(t)
	backing := &countingStore{rules: []relations.Rule{{Type: facility.MaterialFlow, Priority: 9}}}
	store := NewCachedStore(backing, kv, time.Minute, nil)
	ctx := context.Background()

	first, err := store.Query(ctx, "Weighing Room", "Granulation")
	require.NoError(t, err)
	second, err := store.Query(ctx, "weighing  room", "GRANULATION")
	require.NoError(t, err)

	assert.Equal(t, 1, backing.calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("relations:weighing room:granulation"))
	assert.Equal(t, time.Minute, mr.TTL("relations:weighing room:granulation"))
}

func TestCachedStore_Query_CachesEmpty(t *testing.T) {
	_, kv := setupTestRedis(t)
	backing := &countingStore{}
	store := NewCachedStore(backing, kv, time.Minute, nil)

	for i := 0; i < 3; i++ {
		rules, err := store.Query(context.Background(), "Office", "Corridor")
		require.NoError(t, err)
		assert.Empty(t, rules)
	}
	assert.Equal(t, 1, backing.calls)
}

func TestCachedStore_Query_ErrorsNotCached(t *testing.T) {
	mr, kv := setupTestRedis(t)
	backing := &countingStore{err: errors.New("store down")}
	store := NewCachedStore(backing, kv, time.Minute, nil)

	_, err := store.Query(context.Background(), "A", "B")
	assert.Error(t, err)
	assert.False(t, mr.Exists(CacheKey("A", "B")))
}

func TestCachedStore_Query_RedisDown(t *testing.T) {
	mr, kv := setupTestRedis(t)
	mr.Close()
	backing := &countingStore{rules: []relations.Rule{{Type: facility.PersonnelFlow, Priority: 4}}}
	store := NewCachedStore(backing, kv, time.Minute, nil)

	rules, err := store.Query(context.Background(), "A", "B")
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestCachedStore_Query_BadEntry(t *testing.T) {
	mr, kv := setupTestRedis(t)
	require.NoError(t, mr.Set(CacheKey("A", "B"), "not json"))
	backing := &countingStore{rules: []relations.Rule{{Type: facility.PersonnelFlow, Priority: 4}}}

	rules, err := NewCachedStore(backing, kv, time.Minute, nil).Query(context.Background(), "A", "B")
	require.NoError(t, err)
	assert.Len(t, rules, 1)
	assert.Equal(t, 1, backing.calls)
}

func TestRedisKVStore_GetMiss(t *testing.T) {
	_, kv := setupTestRedis(t)
	_, err := kv.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
