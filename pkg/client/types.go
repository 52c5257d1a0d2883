package client

import (
	"encoding/json"
	"time"
)

// Envelope is the wrapper every API response is delivered in.
// Success is a pointer so a missing flag can be told apart from false.
type Envelope struct {
	Success    *bool           `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	Pagination *PageInfo       `json:"pagination,omitempty"`
	Filters    FilterInfo      `json:"filters,omitempty"`
}

// OK reports whether the envelope carries an explicit success flag set to true.
func (e *Envelope) OK() bool {
	return e != nil && e.Success != nil && *e.Success
}

// PageInfo describes the position of a list response within the full result set.
type PageInfo struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages,omitempty"`
	HasNext    bool `json:"hasNext,omitempty"`
	HasPrev    bool `json:"hasPrev,omitempty"`
}

// Pages returns TotalPages, deriving it from Total and Limit when the server omitted it.
func (p *PageInfo) Pages() int {
	if p == nil {
		return 0
	}
	if p.TotalPages > 0 {
		return p.TotalPages
	}
	if p.Limit <= 0 {
		if p.Total > 0 {
			return 1
		}
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// FilterInfo is server-defined filter metadata attached to list responses
// (available categories, research areas, applied filters).
type FilterInfo map[string]any

// Response is a validated envelope together with the body it was decoded from.
type Response struct {
	Envelope Envelope
	Raw      []byte
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination *PageInfo  `json:"pagination,omitempty"`
	Filters    FilterInfo `json:"filters,omitempty"`
}

// Video is a published research video.
type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category,omitempty"`
	ResearchArea string    `json:"researchArea,omitempty"`
	URL          string    `json:"url,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Duration     int       `json:"duration,omitempty"` // seconds
	Views        int64     `json:"views,omitempty"`
	Featured     bool      `json:"featured,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	PublishedAt  time.Time `json:"publishedAt,omitempty"`
}

// Article is a published research article.
type Article struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary,omitempty"`
	Content      string    `json:"content,omitempty"`
	Category     string    `json:"category,omitempty"`
	ResearchArea string    `json:"researchArea,omitempty"`
	Authors      []string  `json:"authors,omitempty"`
	ReadingTime  int       `json:"readingTime,omitempty"` // minutes
	Views        int64     `json:"views,omitempty"`
	Featured     bool      `json:"featured,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	PublishedAt  time.Time `json:"publishedAt,omitempty"`
}

// Category is a filterable category with its item count.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"`
}

// Stats are aggregate counters across all content.
type Stats struct {
	TotalVideos   int            `json:"totalVideos"`
	TotalArticles int            `json:"totalArticles"`
	TotalViews    int64          `json:"totalViews"`
	Categories    map[string]int `json:"categories,omitempty"`
	ResearchAreas map[string]int `json:"researchAreas,omitempty"`
	UpdatedAt     time.Time      `json:"updatedAt,omitempty"`
}

// HealthStatus is the body of the health check.
type HealthStatus struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// AnalyticsEvent is a single usage metric reported to the API.
type AnalyticsEvent struct {
	Type         string         `json:"type"` // e.g. "view", "play", "share"
	ResourceType string         `json:"resourceType,omitempty"`
	ResourceID   string         `json:"resourceId,omitempty"`
	SessionID    string         `json:"sessionId,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// CreateVideoInput is the payload for creating a video.
type CreateVideoInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Category     string   `json:"category,omitempty"`
	ResearchArea string   `json:"researchArea,omitempty"`
	URL          string   `json:"url"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	Duration     int      `json:"duration,omitempty"`
	Featured     bool     `json:"featured,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// CreateArticleInput is the payload for creating an article.
type CreateArticleInput struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary,omitempty"`
	Content      string   `json:"content"`
	Category     string   `json:"category,omitempty"`
	ResearchArea string   `json:"researchArea,omitempty"`
	Authors      []string `json:"authors,omitempty"`
	Featured     bool     `json:"featured,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}
