package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Defaults applied to list parameters before key derivation.
const (
	DefaultPage      = 1
	DefaultLimit     = 12
	MaxLimit         = 100
	DefaultSortBy    = "date"
	DefaultSortOrder = "desc"

	// AllValue is the "no filter" sentinel for category and research area.
	AllValue = "all"
)

var validSortKeys = map[string]bool{
	"date":     true,
	"title":    true,
	"views":    true,
	"duration": true,
}

// ListParams are the filters accepted by list endpoints.
// The zero value lists the first page of everything, newest first.
type ListParams struct {
	Search       string
	Category     string
	ResearchArea string
	SortBy       string
	SortOrder    string
	Page         int
	Limit        int
	Featured     *bool
}

// Normalize returns a copy with defaults filled in and text trimmed, so
// logically identical parameter sets compare and hash equal.
func (p ListParams) Normalize() ListParams {
	p.Search = strings.TrimSpace(p.Search)
	p.Category = strings.TrimSpace(p.Category)
	p.ResearchArea = strings.TrimSpace(p.ResearchArea)
	p.SortBy = strings.ToLower(strings.TrimSpace(p.SortBy))
	p.SortOrder = strings.ToLower(strings.TrimSpace(p.SortOrder))

	if strings.EqualFold(p.Category, AllValue) {
		p.Category = ""
	}
	if strings.EqualFold(p.ResearchArea, AllValue) {
		p.ResearchArea = ""
	}
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	if p.SortOrder == "" {
		p.SortOrder = DefaultSortOrder
	}
	return p
}

// Validate checks normalized parameters.
func (p ListParams) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1 (got %d)", ErrInvalidParams, p.Page)
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d (got %d)", ErrInvalidParams, MaxLimit, p.Limit)
	}
	if !validSortKeys[p.SortBy] {
		return fmt.Errorf("%w: unknown sort key %q", ErrInvalidParams, p.SortBy)
	}
	if p.SortOrder != "asc" && p.SortOrder != "desc" {
		return fmt.Errorf("%w: sort order must be asc or desc (got %q)", ErrInvalidParams, p.SortOrder)
	}
	return nil
}

// Query encodes normalized parameters. Empty filters are omitted rather
// than sent literally.
func (p ListParams) Query() url.Values {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.ResearchArea != "" {
		q.Set("researchArea", p.ResearchArea)
	}
	q.Set("sortBy", p.SortBy)
	q.Set("sortOrder", p.SortOrder)
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.Featured != nil {
		q.Set("featured", strconv.FormatBool(*p.Featured))
	}
	return q
}

// prepare normalizes and validates params for op.
func (p ListParams) prepare(op string) (ListParams, error) {
	n := p.Normalize()
	if err := n.Validate(); err != nil {
		return n, &CallerError{Op: op, Err: err}
	}
	return n, nil
}

// Bool returns a pointer to v, for ListParams.Featured.
func Bool(v bool) *bool {
	return &v
}

// ParseListParams reads list filters from query using the same names Query
// writes. Missing values stay zero; malformed numbers and booleans wrap
// ErrInvalidParams.
func ParseListParams(query url.Values) (ListParams, error) {
	p := ListParams{
		Search:       query.Get("search"),
		Category:     query.Get("category"),
		ResearchArea: query.Get("researchArea"),
		SortBy:       query.Get("sortBy"),
		SortOrder:    query.Get("sortOrder"),
	}

	for name, dst := range map[string]*int{"page": &p.Page, "limit": &p.Limit} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return ListParams{}, fmt.Errorf("%w: %s must be an integer (got %q)", ErrInvalidParams, name, raw)
		}
		*dst = n
	}

	if raw := query.Get("featured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return ListParams{}, fmt.Errorf("%w: featured must be a boolean (got %q)", ErrInvalidParams, raw)
		}
		p.Featured = &v
	}

	return p, nil
}
