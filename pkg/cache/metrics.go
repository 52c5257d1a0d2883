package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	layerMemory = "memory"
	layerRedis  = "redis"
)

var (
	// CacheHits tracks fresh cache hits by layer (memory, redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_cache_hits_total",
			Help: "Total number of content cache hits",
		},
		[]string{"layer"},
	)

	// CacheMisses tracks absent or stale lookups by layer
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_cache_misses_total",
			Help: "Total number of content cache misses (absent or stale)",
		},
		[]string{"layer"},
	)

	// CacheEntries tracks the number of entries held in memory
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "content_cache_entries",
			Help: "Current number of entries held by the content cache",
		},
		[]string{"layer"},
	)

	// CacheClears tracks explicit invalidations
	CacheClears = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_cache_clears_total",
			Help: "Total number of explicit cache invalidations",
		},
		[]string{"layer"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "clear"
	)
)
