package quote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

// gatedFetcher blocks each GetQuote call until its release channel fires, so
// tests control response ordering precisely.
type gatedFetcher struct {
	mu       sync.Mutex
	gates    map[string]chan struct{}
	response func(req types.QuoteRequest) (*types.Quote, error)
}

func newGatedFetcher() *gatedFetcher {
	f := &gatedFetcher{gates: make(map[string]chan struct{})}
	f.response = func(req types.QuoteRequest) (*types.Quote, error) {
		return &types.Quote{
			Direction: req.Direction,
			SrcChain:  req.SrcChain,
			DstChain:  req.DstChain,
			SrcToken:  req.SrcToken,
			DstToken:  req.DstToken,
			SrcAmount: req.Amount,
			DstAmount: req.Amount,
		}, nil
	}
	return f
}

func (f *gatedFetcher) gate(amount string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[amount] = ch
	return ch
}

func (f *gatedFetcher) GetQuote(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
	f.mu.Lock()
	ch := f.gates[req.Amount]
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
	return f.response(req)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestEngine_RequestResolves(t *testing.T) {
	fetcher := newGatedFetcher()
	engine := NewEngine(fetcher)

	engine.Request(context.Background(), types.QuoteRequest{
		Direction: types.ExactInput,
		Amount:    "100000000",
	})
	assert.True(t, engine.State().Loading)

	waitFor(t, func() bool { return !engine.State().Loading })

	state := engine.State()
	require.NotNil(t, state.Quote)
	assert.NoError(t, state.Err)
	assert.Equal(t, "100000000", state.Quote.SrcAmount)
}

func TestEngine_StaleResponseNeverApplied(t *testing.T) {
	fetcher := newGatedFetcher()
	engine := NewEngine(fetcher)

	gateA := fetcher.gate("1")
	gateB := fetcher.gate("2")

	// Request A, then supersede it with B before A's response arrives.
	engine.Request(context.Background(), types.QuoteRequest{Amount: "1"})
	engine.Request(context.Background(), types.QuoteRequest{Amount: "2"})

	// B resolves first.
	close(gateB)
	waitFor(t, func() bool { return engine.State().Quote != nil })
	assert.Equal(t, "2", engine.State().Quote.SrcAmount)

	// A's late response must be dropped, not applied over B's.
	close(gateA)
	time.Sleep(50 * time.Millisecond)
	require.NotNil(t, engine.State().Quote)
	assert.Equal(t, "2", engine.State().Quote.SrcAmount)
}

func TestEngine_ResetDiscardsInFlight(t *testing.T) {
	fetcher := newGatedFetcher()
	engine := NewEngine(fetcher)

	gate := fetcher.gate("5")
	engine.Request(context.Background(), types.QuoteRequest{Amount: "5"})
	engine.Reset()

	close(gate)
	time.Sleep(50 * time.Millisecond)

	state := engine.State()
	assert.Nil(t, state.Quote)
	assert.False(t, state.Loading)
}

func TestEngine_ResetNotifiesSubscriber(t *testing.T) {
	fetcher := newGatedFetcher()

	var mu sync.Mutex
	var states []State
	engine := NewEngine(fetcher, WithOnUpdate(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	}))

	gate := fetcher.gate("7")
	engine.Request(context.Background(), types.QuoteRequest{Amount: "7"})
	engine.Reset()

	// Subscribers see the cleared state without waiting for anything else to
	// happen.
	mu.Lock()
	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.Equal(t, State{}, states[1])
	mu.Unlock()

	// The superseded response must not produce a further notification.
	close(gate)
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	assert.Len(t, states, 2)
	mu.Unlock()
}

func TestEngine_FetchErrorSurfaces(t *testing.T) {
	fetcher := newGatedFetcher()
	wantErr := errors.New("upstream unavailable")
	fetcher.response = func(types.QuoteRequest) (*types.Quote, error) {
		return nil, wantErr
	}
	engine := NewEngine(fetcher)

	engine.Request(context.Background(), types.QuoteRequest{Amount: "9"})
	waitFor(t, func() bool { return engine.State().Err != nil })

	state := engine.State()
	assert.Nil(t, state.Quote)
	assert.ErrorIs(t, state.Err, wantErr)
}

func TestDebouncer_CoalescesRapidInput(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	var got []string
	record := func(v string) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	}

	d.Input("1", record)
	d.Input("12", record)
	d.Input("123", record)

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "123", got[0])
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	fired := false
	d.Input("1", func(string) { fired = true })
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired)
}
