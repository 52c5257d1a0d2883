package hooks

import (
	"context"
	"strings"
	"sync"
)

// DetailFunc fetches a single item by id, e.g. (*client.Client).GetVideo.
type DetailFunc[T any] func(ctx context.Context, id string) (*T, error)

// DetailHook tracks one item selected by identifier.
//
// With an empty identifier no request is made and the hook stays Loading.
type DetailHook[T any] struct {
	*hook[*T]
	fetch DetailFunc[T]

	idMu sync.Mutex
	id   string

	loaded <-chan struct{}
}

// NewDetailHook creates the hook and loads id when it is non-empty.
func NewDetailHook[T any](fetch DetailFunc[T], id string, opts ...Option) *DetailHook[T] {
	h := &DetailHook[T]{
		hook:  newHook[*T]("detail", buildOptions(opts)),
		fetch: fetch,
	}
	h.loaded = h.load(strings.TrimSpace(id))
	return h
}

// Loaded is closed once the initial request has settled, or immediately
// when the hook was created without an identifier.
func (h *DetailHook[T]) Loaded() <-chan struct{} {
	return h.loaded
}

// ID returns the current identifier.
func (h *DetailHook[T]) ID() string {
	h.idMu.Lock()
	defer h.idMu.Unlock()
	return h.id
}

// SetID switches to another item. Nothing happens when id is unchanged.
func (h *DetailHook[T]) SetID(id string) <-chan struct{} {
	id = strings.TrimSpace(id)
	if id == h.ID() {
		return closedChan()
	}
	return h.load(id)
}

// Refetch reloads the current item.
func (h *DetailHook[T]) Refetch() <-chan struct{} {
	return h.load(h.ID())
}

func (h *DetailHook[T]) load(id string) <-chan struct{} {
	h.idMu.Lock()
	h.id = id
	h.idMu.Unlock()

	// An identifier change invalidates whatever is in flight, even when the
	// new identifier is empty and no request follows.
	seq, ok := h.begin(func(s *State[*T]) {
		s.Data = nil
	})
	if !ok || id == "" {
		return closedChan()
	}

	return h.launch(seq,
		func(ctx context.Context) (func(*State[*T]), error) {
			item, err := h.fetch(ctx, id)
			if err != nil {
				return nil, err
			}
			return func(s *State[*T]) {
				s.Data = item
			}, nil
		},
		func(s *State[*T]) {
			s.Data = nil
		},
	)
}
