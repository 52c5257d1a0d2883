package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrCacheMiss indicates the key is absent or its entry is stale
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is a TTL-bounded key/value store for response bodies.
type Store interface {
	// Get returns the stored value while it is fresh.
	// Returns ErrCacheMiss if the key is absent or stale.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set unconditionally overwrites the value for key, stamping it with the current time.
	Set(ctx context.Context, key Key, value []byte) error

	// Clear drops every entry owned by the store.
	Clear(ctx context.Context) error
}

// Option configures a store.
type Option func(*options)

type options struct {
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

func defaultOptions() options {
	return options{
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
}

// WithTTL sets the freshness window. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// MemoryStore is an in-process Store. Stale entries are not evicted on read;
// they stay in place until the next Set for the same key or a Clear.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
	opts    options
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{
		entries: make(map[string]*entry),
		opts:    o,
	}
}

// TTL returns the freshness window shared by all entries.
func (s *MemoryStore) TTL() time.Duration {
	return s.opts.ttl
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key Key) ([]byte, error) {
	k := key.String()

	s.mu.RLock()
	e, ok := s.entries[k]
	s.mu.RUnlock()

	if !ok {
		CacheMisses.WithLabelValues(layerMemory).Inc()
		return nil, ErrCacheMiss
	}

	now := s.opts.now()
	if !e.isFresh(now, s.opts.ttl) {
		s.opts.logger.Debug().
			Str("key", k).
			Dur("age", e.age(now)).
			Msg("Cache entry stale")
		CacheMisses.WithLabelValues(layerMemory).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(layerMemory).Inc()
	return e.Value, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key Key, value []byte) error {
	e := &entry{
		Value:    append([]byte(nil), value...),
		StoredAt: s.opts.now(),
	}

	s.mu.Lock()
	s.entries[key.String()] = e
	size := len(s.entries)
	s.mu.Unlock()

	CacheEntries.WithLabelValues(layerMemory).Set(float64(size))
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]*entry)
	s.mu.Unlock()

	CacheEntries.WithLabelValues(layerMemory).Set(0)
	CacheClears.WithLabelValues(layerMemory).Inc()
	return nil
}

// Len returns the number of entries held, stale ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
