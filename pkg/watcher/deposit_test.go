package watcher

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

// scriptedReader returns a fixed sequence of balances.
type scriptedReader struct {
	mu       sync.Mutex
	balances []*big.Int
	err      error
	idx      int
}

func (r *scriptedReader) Balance(ctx context.Context, chain types.ChainID, token, address string) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	b := r.balances[r.idx]
	if r.idx < len(r.balances)-1 {
		r.idx++
	}
	return new(big.Int).Set(b), nil
}

func bi(v int64) *big.Int { return big.NewInt(v) }

func TestDepositWatcher_FirstObservationSetsBaseline(t *testing.T) {
	reader := &scriptedReader{balances: []*big.Int{bi(500)}}
	w := NewDepositWatcher(reader, time.Second, zerolog.Nop())
	ctx := context.Background()

	grew := w.observe(ctx, types.ChainBase, "", "0xaddr")
	assert.False(t, grew, "the pre-existing balance is not a deposit")
	assert.Equal(t, int64(0), w.Received().Int64())
}

func TestDepositWatcher_PositiveDeltaAccumulates(t *testing.T) {
	reader := &scriptedReader{balances: []*big.Int{bi(500), bi(600), bi(600), bi(650)}}
	w := NewDepositWatcher(reader, time.Second, zerolog.Nop())
	ctx := context.Background()

	w.observe(ctx, types.ChainBase, "", "0xaddr") // baseline 500
	assert.True(t, w.observe(ctx, types.ChainBase, "", "0xaddr"))
	assert.Equal(t, int64(100), w.Received().Int64())

	// No change, no event.
	assert.False(t, w.observe(ctx, types.ChainBase, "", "0xaddr"))

	assert.True(t, w.observe(ctx, types.ChainBase, "", "0xaddr"))
	assert.Equal(t, int64(150), w.Received().Int64())
}

func TestDepositWatcher_NegativeDeltaRebaselines(t *testing.T) {
	reader := &scriptedReader{balances: []*big.Int{bi(500), bi(600), bi(300), bi(400)}}
	w := NewDepositWatcher(reader, time.Second, zerolog.Nop())
	ctx := context.Background()

	w.observe(ctx, types.ChainBase, "", "0xaddr") // baseline 500
	w.observe(ctx, types.ChainBase, "", "0xaddr") // +100

	// Unrelated spend drops the balance; received must not shrink and the
	// drop must not count as a deposit.
	assert.False(t, w.observe(ctx, types.ChainBase, "", "0xaddr"))
	assert.Equal(t, int64(100), w.Received().Int64())

	// Deposits after the re-baseline count from the lowered floor.
	assert.True(t, w.observe(ctx, types.ChainBase, "", "0xaddr"))
	assert.Equal(t, int64(200), w.Received().Int64())
}

func TestDepositWatcher_ReadErrorIsSkipped(t *testing.T) {
	reader := &scriptedReader{err: errors.New("rpc down")}
	w := NewDepositWatcher(reader, time.Second, zerolog.Nop())

	grew := w.observe(context.Background(), types.ChainBase, "", "0xaddr")
	assert.False(t, grew)
	assert.Equal(t, int64(0), w.Received().Int64())
}

func TestDepositWatcher_WatchFiresOnGrowth(t *testing.T) {
	reader := &scriptedReader{balances: []*big.Int{bi(0), bi(250)}}
	w := NewDepositWatcher(reader, 10*time.Millisecond, zerolog.Nop())

	events := make(chan *big.Int, 4)
	sub := w.Watch(context.Background(), types.ChainBase, "", "0xaddr", func(received *big.Int) {
		events <- received
	})
	defer sub.Dispose()

	select {
	case got := <-events:
		assert.Equal(t, int64(250), got.Int64())
	case <-time.After(2 * time.Second):
		t.Fatal("no deposit event observed")
	}
}

func TestSubscription_DisposeStopsLoopAndIsIdempotent(t *testing.T) {
	reader := &scriptedReader{balances: []*big.Int{bi(0)}}
	w := NewDepositWatcher(reader, 10*time.Millisecond, zerolog.Nop())

	sub := w.Watch(context.Background(), types.ChainBase, "", "0xaddr", nil)
	sub.Dispose()
	sub.Dispose()
	assert.True(t, sub.Stopped())

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after dispose")
	}
}

type recordingSubmitter struct {
	mu   sync.Mutex
	reqs []SubmitRequest
}

func (r *recordingSubmitter) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return "0xhash", nil
}

func TestRouter_DispatchesByChain(t *testing.T) {
	base := &recordingSubmitter{}
	eth := &recordingSubmitter{}

	router := NewRouter()
	router.Register(types.ChainBase, base)
	router.Register(types.ChainEthereum, eth)

	_, err := router.Submit(context.Background(), SubmitRequest{ChainID: types.ChainBase, To: "0xa", Amount: bi(1)})
	require.NoError(t, err)
	_, err = router.Submit(context.Background(), SubmitRequest{ChainID: types.ChainEthereum, To: "0xb", Amount: bi(2)})
	require.NoError(t, err)

	assert.Len(t, base.reqs, 1)
	assert.Len(t, eth.reqs, 1)
}

func TestRouter_UnregisteredChainFails(t *testing.T) {
	router := NewRouter()

	_, err := router.Submit(context.Background(), SubmitRequest{ChainID: types.ChainSolana})
	assert.ErrorIs(t, err, ErrChainUnsupported)
}
