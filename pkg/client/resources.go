package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API endpoints.
const (
	EndpointVideos     = "/videos"
	EndpointArticles   = "/articles"
	EndpointCategories = "/categories"
	EndpointStats      = "/stats"
	EndpointAnalytics  = "/analytics"
	EndpointHealth     = "/health"
)

// ListVideos returns one page of videos matching params.
func (c *Client) ListVideos(ctx context.Context, params ListParams) (*Page[Video], error) {
	return listResource[Video](ctx, c, "list videos", EndpointVideos, params)
}

// ListArticles returns one page of articles matching params.
func (c *Client) ListArticles(ctx context.Context, params ListParams) (*Page[Article], error) {
	return listResource[Article](ctx, c, "list articles", EndpointArticles, params)
}

// GetVideo returns a single video.
func (c *Client) GetVideo(ctx context.Context, id string) (*Video, error) {
	return getResource[Video](ctx, c, "get video", EndpointVideos, id)
}

// GetArticle returns a single article.
func (c *Client) GetArticle(ctx context.Context, id string) (*Article, error) {
	return getResource[Article](ctx, c, "get article", EndpointArticles, id)
}

// GetCategories returns the category filter metadata.
func (c *Client) GetCategories(ctx context.Context) ([]Category, error) {
	resp, err := c.FetchCached(ctx, EndpointCategories, nil)
	if err != nil {
		return nil, err
	}
	return decodeData[[]Category](c, resp, EndpointCategories)
}

// GetStats returns aggregate content statistics.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	resp, err := c.FetchCached(ctx, EndpointStats, nil)
	if err != nil {
		return nil, err
	}
	stats, err := decodeData[Stats](c, resp, EndpointStats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// CreateVideo creates a video and invalidates the cache.
func (c *Client) CreateVideo(ctx context.Context, input CreateVideoInput) (*Video, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, &CallerError{Op: "create video", Err: fmt.Errorf("%w: title is required", ErrInvalidParams)}
	}
	return createResource[Video](ctx, c, "create video", EndpointVideos, input)
}

// CreateArticle creates an article and invalidates the cache.
func (c *Client) CreateArticle(ctx context.Context, input CreateArticleInput) (*Article, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, &CallerError{Op: "create article", Err: fmt.Errorf("%w: title is required", ErrInvalidParams)}
	}
	return createResource[Article](ctx, c, "create article", EndpointArticles, input)
}

// Health checks the upstream API. The result is never cached.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	resp, err := c.executor.Execute(ctx, EndpointHealth, RequestOptions{})
	if err != nil {
		return nil, err
	}
	status, err := decodeData[HealthStatus](c, resp, EndpointHealth)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// ReportAnalytics posts a usage event. The result is never cached.
func (c *Client) ReportAnalytics(ctx context.Context, event AnalyticsEvent) error {
	if strings.TrimSpace(event.Type) == "" {
		return &CallerError{Op: "report analytics", Err: fmt.Errorf("%w: event type is required", ErrInvalidParams)}
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	_, err := c.executor.Execute(ctx, EndpointAnalytics, RequestOptions{
		Method: http.MethodPost,
		Body:   event,
	})
	return err
}

// listResource fetches and decodes one page of a list endpoint.
func listResource[T any](ctx context.Context, c *Client, op, endpoint string, params ListParams) (*Page[T], error) {
	p, err := params.prepare(op)
	if err != nil {
		return nil, err
	}

	resp, err := c.FetchCached(ctx, endpoint, p.Query())
	if err != nil {
		return nil, err
	}

	items, err := decodeData[[]T](c, resp, endpoint)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}

	return &Page[T]{
		Items:      items,
		Pagination: resp.Envelope.Pagination,
		Filters:    resp.Envelope.Filters,
	}, nil
}

// getResource fetches and decodes a single item by id.
func getResource[T any](ctx context.Context, c *Client, op, endpoint, id string) (*T, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &CallerError{Op: op, Err: ErrMissingID}
	}

	path := endpoint + "/" + url.PathEscape(id)
	resp, err := c.FetchCached(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	item, err := decodeData[T](c, resp, path)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// createResource posts input with admin credentials and clears the cache on success.
func createResource[T any](ctx context.Context, c *Client, op, endpoint string, input any) (*T, error) {
	if c.config.AdminToken == "" {
		return nil, &CallerError{Op: op, Err: ErrMissingToken}
	}

	resp, err := c.executor.Execute(ctx, endpoint, RequestOptions{
		Method: http.MethodPost,
		Header: http.Header{"Authorization": []string{"Bearer " + c.config.AdminToken}},
		Body:   input,
	})
	if err != nil {
		return nil, err
	}

	created, err := decodeData[T](c, resp, endpoint)
	if err != nil {
		return nil, err
	}

	// Cached lists no longer reflect the new item. A failed clear is logged
	// by InvalidateCache; the create itself succeeded.
	if err := c.InvalidateCache(ctx); err == nil {
		c.logger.Info().Str("endpoint", endpoint).Msg("Resource created, cache invalidated")
	}
	return &created, nil
}

// decodeData unmarshals the envelope payload into T.
func decodeData[T any](c *Client, resp *Response, endpoint string) (T, error) {
	var out T
	data := resp.Envelope.Data
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		formatErr := &FormatError{
			Endpoint:     endpoint,
			DeclaredType: "application/json",
			BodyPrefix:   previewBody(data),
			Err:          fmt.Errorf("decode data: %w", err),
		}
		errorsTotal.WithLabelValues(errorKind(formatErr)).Inc()
		c.logger.Error().Err(formatErr).Str("endpoint", endpoint).Msg("Unexpected payload shape")
		return out, formatErr
	}
	return out, nil
}
