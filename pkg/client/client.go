// Package client provides the content API client: a validating request
// executor and a caching layer with single-flight deduplication on top of it.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Sternrassler/content-client/pkg/cache"
	"github.com/Sternrassler/content-client/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Client is the caching content API client.
type Client struct {
	executor *Executor
	store    cache.Store
	inflight singleflight.Group
	config   Config
	logger   zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.example.com/api" (REQUIRED)
	BaseURL string

	// UserAgent header sent with every request
	UserAgent string

	// AdminToken authorizes create operations (optional for read-only use)
	AdminToken string

	// Store caches validated responses. Defaults to a MemoryStore with CacheTTL.
	Store cache.Store

	// CacheTTL is the freshness window of the default store
	CacheTTL time.Duration

	// HTTPClient overrides the transport (for testing)
	HTTPClient Doer

	// Timeout bounds each transport call. Zero means no timeout;
	// callers bound latency with context deadlines instead.
	Timeout time.Duration
}

// DefaultConfig returns a default configuration for the API at baseURL.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		CacheTTL:  cache.DefaultTTL,
	}
}

// New creates a new content API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("cache ttl must be >= 0 (got %s)", cfg.CacheTTL)
	}

	logger := logging.NewLogger("content-client")

	if cfg.Store == nil {
		cfg.Store = cache.NewMemoryStore(cache.WithTTL(cfg.CacheTTL), cache.WithLogger(logging.NewLogger("cache")))
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		executor: NewExecutor(cfg.BaseURL, cfg.UserAgent, doer, logger),
		store:    cfg.Store,
		config:   cfg,
		logger:   logger,
	}, nil
}

// FetchCached returns the validated response for endpoint+query, serving it
// from the store while fresh.
//
// On a miss, concurrent callers for the same key share one transport call.
// The shared call is detached from any single caller's cancellation; each
// caller still stops waiting when its own ctx is done. Failures are never
// cached.
func (c *Client) FetchCached(ctx context.Context, endpoint string, query url.Values) (*Response, error) {
	// Step 1: Derive key
	key := cache.Key{Endpoint: endpoint, Params: query}

	// Step 2: Check cache
	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		resp, decodeErr := decodeCached(raw)
		if decodeErr == nil {
			c.logger.Debug().Str("endpoint", endpoint).Str("key", key.String()).Msg("Cache hit")
			return resp, nil
		}
		c.logger.Warn().Err(decodeErr).Str("key", key.String()).Msg("Discarding undecodable cache entry")
	case !errors.Is(err, cache.ErrCacheMiss):
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
	}

	// Step 3: Execute, collapsing concurrent misses
	ch := c.inflight.DoChan(key.String(), func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)

		resp, err := c.executor.Execute(fetchCtx, endpoint, RequestOptions{Query: query})
		if err != nil {
			return nil, err
		}

		// Step 4: Store fresh result
		if err := c.store.Set(fetchCtx, key, resp.Raw); err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to cache response")
		} else {
			c.logger.Debug().Str("endpoint", endpoint).Str("key", key.String()).Msg("Cached response")
		}
		return resp, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			sharedFetchesTotal.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Response), nil
	}
}

// InvalidateCache drops every cached response.
func (c *Client) InvalidateCache(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Cache clear failed")
		return fmt.Errorf("clear cache: %w", err)
	}
	c.logger.Debug().Msg("Cache cleared")
	return nil
}

// Executor returns the underlying uncached executor.
func (c *Client) Executor() *Executor {
	return c.executor
}

// Store returns the cache store (for testing).
func (c *Client) Store() cache.Store {
	return c.store
}

// decodeCached rebuilds a Response from a cached body.
func decodeCached(raw []byte) (*Response, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", cache.ErrInvalidEntry, err)
	}
	if !env.OK() {
		return nil, fmt.Errorf("%w: cached envelope is not successful", cache.ErrInvalidEntry)
	}
	return &Response{Envelope: env, Raw: raw}, nil
}
