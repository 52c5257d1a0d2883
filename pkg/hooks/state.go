// Package hooks drives the caching client on behalf of UI-style consumers.
//
// A hook owns one State value and moves it through
// Loading -> Success | Error as its requests settle. Requests are numbered;
// only the most recently issued one may update state, so a slow earlier
// response can never overwrite a newer one. After Close, settlements are
// discarded and subscribers are no longer called.
package hooks

import (
	"context"
	"sort"
	"sync"

	"github.com/Sternrassler/content-client/pkg/client"
	"github.com/Sternrassler/content-client/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultErrorMessage is shown when a failure carries no usable message.
const DefaultErrorMessage = "Something went wrong"

// State is the consumer-visible snapshot of a hook.
type State[T any] struct {
	Data       T
	Loading    bool
	Error      string
	Pagination *client.PageInfo
	Filters    client.FilterInfo
}

// Option configures a hook.
type Option func(*options)

type options struct {
	ctx      context.Context
	logger   zerolog.Logger
	reporter *Reporter
}

// WithContext sets the parent context for the hook's requests.
// Close cancels the derived context.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithLogger overrides the hook logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithReporter attaches an analytics reporter.
func WithReporter(r *Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

func buildOptions(opts []Option) options {
	o := options{
		ctx:    context.Background(),
		logger: logging.NewLogger("hooks"),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// hook is the state machine shared by every hook shape.
type hook[T any] struct {
	name string

	mu      sync.Mutex
	state   State[T]
	seq     uint64
	alive   bool
	subs    map[int]func(State[T])
	nextSub int

	// version counts state mutations; delivered is the last version handed
	// to subscribers. Only one goroutine dispatches at a time.
	version     uint64
	delivered   uint64
	dispatching bool

	ctx      context.Context
	cancel   context.CancelFunc
	logger   zerolog.Logger
	reporter *Reporter
}

func newHook[T any](name string, o options) *hook[T] {
	ctx, cancel := context.WithCancel(o.ctx)
	return &hook[T]{
		name:     name,
		state:    State[T]{Loading: true},
		alive:    true,
		subs:     make(map[int]func(State[T])),
		ctx:      ctx,
		cancel:   cancel,
		logger:   o.logger.With().Str("hook", name).Logger(),
		reporter: o.reporter,
	}
}

// State returns a snapshot of the current state.
func (h *hook[T]) State() State[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Subscribe registers fn to be called with state changes and returns a
// function that removes it. Subscribers run without any hook lock held, so
// they may read State, unsubscribe, Refetch or Close. Intermediate states
// may be coalesced when changes arrive while subscribers are running; the
// latest state is always delivered.
func (h *hook[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.alive {
		return func() {}
	}

	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Reporter returns the analytics reporter (may be nil; Report on nil is a no-op).
func (h *hook[T]) Reporter() *Reporter {
	return h.reporter
}

// Close tears the hook down. Pending settlements are discarded, the
// request context is cancelled and subscribers are dropped. No subscriber
// call starts after Close returns; one already running is not interrupted.
func (h *hook[T]) Close() {
	h.mu.Lock()
	if !h.alive {
		h.mu.Unlock()
		return
	}
	h.alive = false
	h.subs = nil
	h.mu.Unlock()

	h.cancel()
	h.logger.Debug().Msg("Hook closed")
}

// begin marks a new request as issued and returns its sequence number.
// ok is false once the hook is closed.
func (h *hook[T]) begin(prepare func(*State[T])) (seq uint64, ok bool) {
	h.mu.Lock()
	if !h.alive {
		h.mu.Unlock()
		return 0, false
	}
	h.seq++
	seq = h.seq
	h.state.Loading = true
	h.state.Error = ""
	if prepare != nil {
		prepare(&h.state)
	}
	h.version++
	h.mu.Unlock()

	h.emit()
	return seq, true
}

// settle applies the outcome of request seq if it is still the latest
// issued request and the hook is alive.
func (h *hook[T]) settle(seq uint64, err error, apply func(*State[T])) {
	h.mu.Lock()
	if !h.alive {
		h.mu.Unlock()
		settlementsTotal.WithLabelValues(h.name, "closed").Inc()
		return
	}
	if seq != h.seq {
		h.mu.Unlock()
		settlementsTotal.WithLabelValues(h.name, "superseded").Inc()
		h.logger.Debug().
			Uint64("seq", seq).
			Msg("Discarding superseded response")
		return
	}

	h.state.Loading = false
	if err != nil {
		h.state.Error = client.UserMessage(err, DefaultErrorMessage)
		settlementsTotal.WithLabelValues(h.name, "error").Inc()
	} else {
		settlementsTotal.WithLabelValues(h.name, "success").Inc()
	}
	apply(&h.state)
	h.version++
	h.mu.Unlock()

	h.emit()
}

// emit delivers the latest state to subscribers. When another goroutine is
// already dispatching, it picks up the new version before it stops, so
// notifications stay in mutation order without holding h.mu during a
// subscriber call.
func (h *hook[T]) emit() {
	h.mu.Lock()
	if h.dispatching {
		h.mu.Unlock()
		return
	}
	h.dispatching = true

	for h.alive && h.delivered != h.version {
		h.delivered = h.version
		snapshot := h.state
		ids := make([]int, 0, len(h.subs))
		for id := range h.subs {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		h.mu.Unlock()

		for _, id := range ids {
			if fn, ok := h.subscriber(id); ok {
				fn(snapshot)
			}
		}

		h.mu.Lock()
	}

	h.dispatching = false
	h.mu.Unlock()
}

// subscriber returns the callback registered under id if the hook is still
// alive and the subscription was not removed.
func (h *hook[T]) subscriber(id int) (func(State[T]), bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.alive {
		return nil, false
	}
	fn, ok := h.subs[id]
	return fn, ok
}

// launch runs fetch in the background for request seq and closes the
// returned channel once the outcome has been applied or discarded.
func (h *hook[T]) launch(seq uint64, fetch func(ctx context.Context) (func(*State[T]), error), onError func(*State[T])) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		apply, err := fetch(h.ctx)
		if err != nil {
			h.settle(seq, err, onError)
			return
		}
		h.settle(seq, nil, apply)
	}()
	return done
}

// closedChan returns an already closed channel.
func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
