package watcher

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

// DefaultDepositInterval is the balance poll cadence.
const DefaultDepositInterval = 5 * time.Second

// BalanceReader reads the balance of an address for one token. Token is
// empty for the chain's gas asset.
type BalanceReader interface {
	Balance(ctx context.Context, chain types.ChainID, token, address string) (*big.Int, error)
}

// DepositWatcher polls a deposit address and reports the amount received as
// the forward-only delta from the first observed balance. Balance decreases
// from unrelated spends re-baseline downward; a negative delta is never
// reported as a transfer.
type DepositWatcher struct {
	reader   BalanceReader
	interval time.Duration
	log      zerolog.Logger

	mu       sync.Mutex
	baseline *big.Int
	received *big.Int
}

// NewDepositWatcher creates a watcher over reader. interval <= 0 selects
// DefaultDepositInterval.
func NewDepositWatcher(reader BalanceReader, interval time.Duration, log zerolog.Logger) *DepositWatcher {
	if interval <= 0 {
		interval = DefaultDepositInterval
	}
	return &DepositWatcher{
		reader:   reader,
		interval: interval,
		log:      log,
		received: big.NewInt(0),
	}
}

// Received returns the cumulative amount observed so far.
func (w *DepositWatcher) Received() *big.Int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return new(big.Int).Set(w.received)
}

// Watch polls the address until the subscription is disposed or ctx is done,
// invoking onAmount whenever the received amount grows. The first
// observation establishes the baseline and does not fire.
func (w *DepositWatcher) Watch(ctx context.Context, chain types.ChainID, token, address string, onAmount func(received *big.Int)) *Subscription {
	sub := NewSubscription()

	go func() {
		defer sub.MarkDone()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.stop:
				return
			case <-ticker.C:
				if grew := w.observe(ctx, chain, token, address); grew && onAmount != nil {
					onAmount(w.Received())
				}
			}
		}
	}()

	return sub
}

// observe reads the balance once and folds it into the received total.
// Returns true when the total grew.
func (w *DepositWatcher) observe(ctx context.Context, chain types.ChainID, token, address string) bool {
	balance, err := w.reader.Balance(ctx, chain, token, address)
	if err != nil {
		w.log.Debug().Err(err).Str("address", address).Msg("balance poll failed")
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.baseline == nil {
		w.baseline = new(big.Int).Set(balance)
		return false
	}

	delta := new(big.Int).Sub(balance, w.baseline)
	if delta.Sign() < 0 {
		// Unrelated spend lowered the balance; re-baseline so future
		// deposits still count, keep what was already received.
		w.baseline.Set(balance)
		return false
	}
	if delta.Sign() == 0 {
		return false
	}

	w.received.Add(w.received, delta)
	w.baseline.Set(balance)
	return true
}
