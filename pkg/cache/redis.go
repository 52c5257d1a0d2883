package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"lukechampine.com/blake3"
)

// redisNamespace prefixes every Redis key written by RedisStore.
const redisNamespace = KeyPrefix + ":cache:"

// clearBatchSize bounds SCAN pages and DEL batches during Clear.
const clearBatchSize = 500

// RedisStore is a Store backed by Redis, for processes that front the API
// (the caching proxy) and want entries to survive a restart.
//
// Keys are hashed with BLAKE3 so arbitrarily long option sets produce
// bounded Redis keys. Entries carry their own StoredAt, and freshness is
// decided from it; the Redis TTL only reclaims memory.
type RedisStore struct {
	redis *redis.Client
	opts  options
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client, opts ...Option) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore{
		redis: redisClient,
		opts:  o,
	}
}

// redisKey maps a cache key to its namespaced Redis key.
func redisKey(key Key) string {
	sum := blake3.Sum256([]byte(key.String()))
	return redisNamespace + hex.EncodeToString(sum[:])
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key Key) ([]byte, error) {
	data, err := s.redis.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues(layerRedis).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	now := s.opts.now()
	if !e.isFresh(now, s.opts.ttl) {
		s.opts.logger.Debug().
			Str("key", key.String()).
			Dur("age", e.age(now)).
			Msg("Cache entry stale")
		CacheMisses.WithLabelValues(layerRedis).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(layerRedis).Inc()
	return e.Value, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key Key, value []byte) error {
	data, err := json.Marshal(&entry{
		Value:    value,
		StoredAt: s.opts.now(),
	})
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.redis.Set(ctx, redisKey(key), data, s.opts.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Clear implements Store. Only keys in the store namespace are removed.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.redis.Scan(ctx, 0, redisNamespace+"*", clearBatchSize).Iterator()

	batch := make([]string, 0, clearBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.redis.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatchSize {
			if err := flush(); err != nil {
				CacheErrors.WithLabelValues("clear").Inc()
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		return fmt.Errorf("redis scan: %w", err)
	}
	if err := flush(); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		return err
	}

	CacheClears.WithLabelValues(layerRedis).Inc()
	return nil
}
