// Package quote computes bidirectional swap quotes with supersession
// guarantees: of all requests issued in sequence, only the response for the
// most recent parameters is ever applied.
package quote

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

// Fetcher prices a single request. *api.Client satisfies this.
type Fetcher interface {
	GetQuote(ctx context.Context, req types.QuoteRequest) (*types.Quote, error)
}

// State is a snapshot of the engine's latest quote, loading flag and error.
// Exactly one of Quote/Err is meaningful once Loading is false.
type State struct {
	Request types.QuoteRequest
	Quote   *types.Quote
	Loading bool
	Err     error
}

// Engine issues quote requests and guarantees that a stale response for
// superseded parameters never overwrites a fresher one.
type Engine struct {
	fetcher  Fetcher
	log      zerolog.Logger
	onUpdate func(State)

	mu    sync.Mutex
	gen   uint64
	state State
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger plugs in a structured logger.
func WithLogger(l zerolog.Logger) EngineOption { return func(e *Engine) { e.log = l } }

// WithOnUpdate registers a callback invoked after every state change.
func WithOnUpdate(fn func(State)) EngineOption { return func(e *Engine) { e.onUpdate = fn } }

// NewEngine creates a quote engine over the given fetcher.
func NewEngine(f Fetcher, opts ...EngineOption) *Engine {
	e := &Engine{fetcher: f, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request starts an asynchronous fetch for req, superseding any in-flight
// request. The previous request's result becomes unusable immediately, even
// though its network call may still complete later.
func (e *Engine) Request(ctx context.Context, req types.QuoteRequest) {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.state = State{Request: req, Loading: true}
	notify := e.onUpdate
	state := e.state
	e.mu.Unlock()

	if notify != nil {
		notify(state)
	}

	go e.fetch(ctx, gen, req)
}

// Reset discards any in-flight request and clears the current quote, without
// touching user-entered amounts (those live upstream).
func (e *Engine) Reset() {
	e.mu.Lock()
	e.gen++
	e.state = State{}
	notify := e.onUpdate
	state := e.state
	e.mu.Unlock()

	if notify != nil {
		notify(state)
	}
}

// State returns the latest snapshot.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) fetch(ctx context.Context, gen uint64, req types.QuoteRequest) {
	quote, err := e.fetcher.GetQuote(ctx, req)

	e.mu.Lock()
	if gen != e.gen {
		// Superseded while in flight; drop the result.
		e.mu.Unlock()
		e.log.Debug().Str("amount", req.Amount).Msg("discarding stale quote response")
		return
	}
	if err != nil {
		e.state = State{Request: req, Err: err}
	} else {
		e.state = State{Request: req, Quote: quote}
	}
	notify := e.onUpdate
	state := e.state
	e.mu.Unlock()

	if err != nil {
		e.log.Debug().Err(err).Msg("quote fetch failed")
	}
	if notify != nil {
		notify(state)
	}
}
