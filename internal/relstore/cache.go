package relstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/relations"
)

// ErrCacheMiss means the key is not cached.
var ErrCacheMiss = errors.New("cache miss")

// KVStore is the key-value backend of CachedStore.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// RedisKVStore is a KVStore on go-redis.
type RedisKVStore struct {
	client *redis.Client
}

func NewRedisKVStore(client *redis.Client) *RedisKVStore {
	return &RedisKVStore{client: client}
}

func (r *RedisKVStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisKVStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// CachedStore is a read-through cache in front of another Store. Cache
// failures are logged and fall through to the backing store.
type CachedStore struct {
	next   relations.Store
	kv     KVStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStore wraps next with a cache held in kv.
func NewCachedStore(next relations.Store, kv KVStore, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{next: next, kv: kv, ttl: ttl, logger: logger}
}

// CacheKey is the key a directed pair is cached under.
func CacheKey(fromType, toType string) string {
	return "relations:" + relations.NormalizeType(fromType) + ":" + relations.NormalizeType(toType)
}

// Query serves from cache when possible, otherwise from the backing store,
// caching successful answers (empty ones included).
func (c *CachedStore) Query(ctx context.Context, fromType, toType string) ([]relations.Rule, error) {
	key := CacheKey(fromType, toType)

	val, err := c.kv.Get(ctx, key)
	switch {
	case err == nil:
		var rules []relations.Rule
		if jerr := json.Unmarshal([]byte(val), &rules); jerr == nil {
			return rules, nil
		}
		c.logger.Warn("discarding unreadable cache entry", zap.String("key", key))
	case !errors.Is(err, ErrCacheMiss):
		c.logger.Warn("relationship cache read failed", zap.String("key", key), zap.Error(err))
	}

	rules, err := c.next.Query(ctx, fromType, toType)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		rules = []relations.Rule{}
	}
	data, err := json.Marshal(rules)
	if err != nil {
		return rules, nil
	}
	if err := c.kv.Set(ctx, key, string(data), c.ttl); err != nil {
		c.logger.Warn("relationship cache write failed", zap.String("key", key), zap.Error(err))
	}
	return rules, nil
}
