package hooks

import (
	"context"

	"github.com/Sternrassler/content-client/pkg/client"
)

// StatsFunc fetches aggregate statistics, e.g. (*client.Client).GetStats.
type StatsFunc func(ctx context.Context) (*client.Stats, error)

// StatsHook tracks the aggregate statistics.
type StatsHook struct {
	*hook[*client.Stats]
	fetch  StatsFunc
	loaded <-chan struct{}
}

// NewStatsHook creates the hook and immediately starts loading.
func NewStatsHook(fetch StatsFunc, opts ...Option) *StatsHook {
	h := &StatsHook{
		hook:  newHook[*client.Stats]("stats", buildOptions(opts)),
		fetch: fetch,
	}
	h.loaded = h.Refetch()
	return h
}

// Loaded is closed once the initial request has settled.
func (h *StatsHook) Loaded() <-chan struct{} {
	return h.loaded
}

// Refetch reloads the statistics.
func (h *StatsHook) Refetch() <-chan struct{} {
	seq, ok := h.begin(nil)
	if !ok {
		return closedChan()
	}

	return h.launch(seq,
		func(ctx context.Context) (func(*State[*client.Stats]), error) {
			stats, err := h.fetch(ctx)
			if err != nil {
				return nil, err
			}
			return func(s *State[*client.Stats]) {
				s.Data = stats
			}, nil
		},
		func(s *State[*client.Stats]) {},
	)
}
