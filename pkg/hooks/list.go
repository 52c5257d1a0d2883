package hooks

import (
	"context"
	"sync"

	"github.com/Sternrassler/content-client/pkg/client"
)

// ListFunc fetches one page of a list resource, e.g. (*client.Client).ListVideos.
type ListFunc[T any] func(ctx context.Context, params client.ListParams) (*client.Page[T], error)

// ListHook tracks one filtered, paginated list.
type ListHook[T any] struct {
	*hook[[]T]
	fetch ListFunc[T]

	paramsMu sync.Mutex
	params   client.ListParams

	loaded <-chan struct{}
}

// NewListHook creates the hook and immediately starts loading params.
func NewListHook[T any](fetch ListFunc[T], params client.ListParams, opts ...Option) *ListHook[T] {
	h := &ListHook[T]{
		hook:  newHook[[]T]("list", buildOptions(opts)),
		fetch: fetch,
	}
	h.loaded = h.Refetch(params)
	return h
}

// Loaded is closed once the initial request has settled.
func (h *ListHook[T]) Loaded() <-chan struct{} {
	return h.loaded
}

// Params returns the parameters of the most recently issued request.
func (h *ListHook[T]) Params() client.ListParams {
	h.paramsMu.Lock()
	defer h.paramsMu.Unlock()
	return h.params
}

// Refetch loads params, replacing the current filters. Earlier in-flight
// requests are not cancelled but their results are discarded. The returned
// channel is closed once this request has settled.
func (h *ListHook[T]) Refetch(params client.ListParams) <-chan struct{} {
	h.paramsMu.Lock()
	h.params = params
	h.paramsMu.Unlock()

	seq, ok := h.begin(nil)
	if !ok {
		return closedChan()
	}

	return h.launch(seq,
		func(ctx context.Context) (func(*State[[]T]), error) {
			page, err := h.fetch(ctx, params)
			if err != nil {
				return nil, err
			}
			return func(s *State[[]T]) {
				s.Data = page.Items
				if s.Data == nil {
					s.Data = []T{}
				}
				s.Pagination = page.Pagination
				s.Filters = page.Filters
			}, nil
		},
		func(s *State[[]T]) {
			s.Data = []T{}
		},
	)
}

// Reload repeats the most recent request.
func (h *ListHook[T]) Reload() <-chan struct{} {
	return h.Refetch(h.Params())
}
