// Package cache provides TTL-bounded response caching for the content API client.
//
// A Store maps a Key to the raw body of a validated API response. All
// entries of a store share one TTL; an entry is fresh while
// now - storedAt < ttl. Staleness is checked on read and stale entries are
// left in place until overwritten, so eviction is lazy.
//
// # Basic Usage
//
//	store := cache.NewMemoryStore(cache.WithTTL(5 * time.Minute))
//
//	key := cache.Key{
//		Endpoint: "/videos",
//		Params:   url.Values{"category": []string{"ai"}, "page": []string{"1"}},
//	}
//
//	body, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Miss - fetch from the API, then store.Set(ctx, key, body)
//	}
//
// # Redis Backend
//
//	store := cache.NewRedisStore(redisClient, cache.WithTTL(time.Minute))
//
// Redis keys are content:cache:<blake3(key)>. Clear only removes keys under
// that namespace.
//
// # Metrics
//
//   - content_cache_hits_total{layer} - Fresh hits (memory, redis)
//   - content_cache_misses_total{layer} - Absent or stale lookups
//   - content_cache_entries{layer="memory"} - Entries held in memory
//   - content_cache_clears_total{layer} - Explicit invalidations
//   - content_cache_errors_total{operation} - Backend errors
package cache
