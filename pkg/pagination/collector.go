package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/content-client/pkg/client"
	"github.com/Sternrassler/content-client/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config holds collector configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel page requests.
	MaxConcurrency int

	// Timeout bounds each page request.
	Timeout time.Duration

	// MaxPages caps how many pages are collected.
	MaxPages int
}

// DefaultConfig returns the default collector configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
		MaxPages:       50,
	}
}

// PageFunc fetches one page, e.g. (*client.Client).ListArticles.
type PageFunc[T any] func(ctx context.Context, params client.ListParams) (*client.Page[T], error)

// Result is the outcome of collecting a list.
type Result[T any] struct {
	Items []T `json:"items"`

	// Pages is the number of pages fetched.
	Pages int `json:"pages"`

	// Total is the item count reported by the server.
	Total int `json:"total"`

	// Truncated is set when the server reported more than MaxPages pages.
	Truncated bool `json:"truncated,omitempty"`

	Filters client.FilterInfo `json:"filters,omitempty"`
}

// Collector fetches all pages of a list in parallel.
type Collector[T any] struct {
	fetch  PageFunc[T]
	config Config
	logger zerolog.Logger
}

// NewCollector creates a collector; non-positive config values use defaults.
func NewCollector[T any](fetch PageFunc[T], config Config) *Collector[T] {
	def := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = def.MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.MaxPages <= 0 {
		config.MaxPages = def.MaxPages
	}

	return &Collector[T]{
		fetch:  fetch,
		config: config,
		logger: logging.NewLogger("pagination"),
	}
}

// FetchAll collects every page for params. params.Page is ignored.
func (c *Collector[T]) FetchAll(ctx context.Context, params client.ListParams) (*Result[T], error) {
	start := time.Now()

	first, err := c.fetchPage(ctx, params, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	result := &Result[T]{
		Filters: first.Filters,
	}

	totalPages := first.Pagination.Pages()
	if first.Pagination != nil {
		result.Total = first.Pagination.Total
	}
	if totalPages > c.config.MaxPages {
		c.logger.Warn().
			Int("total_pages", totalPages).
			Int("max_pages", c.config.MaxPages).
			Msg("Page count exceeds limit, truncating")
		totalPages = c.config.MaxPages
		result.Truncated = true
	}
	if totalPages < 1 {
		totalPages = 1
	}

	pages := make([][]T, totalPages)
	pages[0] = first.Items

	if totalPages > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.config.MaxConcurrency)

		for n := 2; n <= totalPages; n++ {
			g.Go(func() error {
				page, err := c.fetchPage(gctx, params, n)
				if err != nil {
					return fmt.Errorf("page %d: %w", n, err)
				}
				pages[n-1] = page.Items
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	for _, items := range pages {
		result.Items = append(result.Items, items...)
	}
	if result.Items == nil {
		result.Items = []T{}
	}
	result.Pages = totalPages

	c.logger.Debug().
		Int("pages", totalPages).
		Int("items", len(result.Items)).
		Dur("duration", time.Since(start)).
		Msg("Collected all pages")

	return result, nil
}

func (c *Collector[T]) fetchPage(ctx context.Context, params client.ListParams, n int) (*client.Page[T], error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	params.Page = n
	return c.fetch(ctx, params)
}
