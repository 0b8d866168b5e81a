package lifecycle

import (
	"context"
	"time"

	"github.com/b3dotfun/anyspend-go/pkg/types"
	"github.com/b3dotfun/anyspend-go/pkg/watcher"
)

// startPolling begins the status poll loop for the active order. The loop
// stops when a terminal status is observed, the subscription is disposed, or
// ctx is done. Any previous loop is disposed first.
func (m *Machine) startPolling(ctx context.Context) *watcher.Subscription {
	sub := watcher.NewSubscription()

	m.mu.Lock()
	prev := m.sub
	m.sub = sub
	orderID := m.orderID
	m.mu.Unlock()

	if prev != nil {
		prev.Dispose()
	}
	if orderID == "" {
		sub.Dispose()
		sub.MarkDone()
		return sub
	}

	go m.pollLoop(ctx, sub, orderID)
	return sub
}

func (m *Machine) pollLoop(ctx context.Context, sub *watcher.Subscription, orderID string) {
	defer sub.MarkDone()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Disposed():
			return
		case <-ticker.C:
			got, err := m.api.GetOrder(ctx, orderID)
			if err != nil {
				// Polling is a repeated no-op-tolerant read; just try
				// again next tick.
				m.log.Debug().Err(err).Str("orderId", orderID).Msg("status poll failed")
				continue
			}

			m.mu.Lock()
			stale := m.orderID != orderID
			m.mu.Unlock()
			if stale {
				return
			}

			m.applyUpdate(ctx, got)

			if got.Order.Status.IsTerminal() {
				m.log.Info().
					Str("orderId", orderID).
					Str("status", string(got.Order.Status)).
					Msg("order reached terminal status")
				return
			}
		}
	}
}

// applyUpdate folds a fresh order read into machine state and runs the
// auto-payment check. Observing the same status more than once is harmless.
func (m *Machine) applyUpdate(ctx context.Context, got *types.OrderAndTransactions) {
	m.mu.Lock()
	if m.orderID != got.Order.ID {
		m.mu.Unlock()
		return
	}
	prevDeposits := 0
	if m.current != nil {
		prevDeposits = len(m.current.DepositTxs)
	}
	m.current = got

	// Once any deposit is observed the machine is read-only with respect to
	// payment: it only renders progress from here.
	if len(got.DepositTxs) > 0 {
		m.waitingForDeposit = true
	}
	// The backend accounted for a new deposit; the submitted transfer is no
	// longer pending, so a remaining deficit may be offered for top-up again.
	if len(got.DepositTxs) > prevDeposits {
		m.submitted = false
	}
	m.mu.Unlock()
	m.notify()

	m.maybeAutoPay(ctx)
}
