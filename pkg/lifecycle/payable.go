package lifecycle

import (
	"context"
	"fmt"
	"math/big"

	"github.com/b3dotfun/anyspend-go/pkg/types"
	"github.com/b3dotfun/anyspend-go/pkg/watcher"
)

// payableLocked derives whether the order is awaiting the user's wallet
// action. This is a client-side condition, not a backend status: it holds
// exactly when no settlement activity exists yet, the backend is still
// waiting for funds, and the chosen rail is wallet-based. m.mu must be held.
func (m *Machine) payableLocked() bool {
	o := m.current
	if o == nil {
		return false
	}
	if len(o.RefundTxs) > 0 || o.ExecuteTx != nil {
		return false
	}
	if allRelaysSucceeded(o.RelayTxs) {
		return false
	}
	if len(o.DepositTxs) > 0 || m.waitingForDeposit {
		return false
	}
	if !o.Order.Status.IsWaitingForPayment() {
		return false
	}
	if o.Order.IsFiat() {
		return false
	}
	return m.selector.Effective().IsWallet()
}

func allRelaysSucceeded(relays []types.RelayTx) bool {
	if len(relays) == 0 {
		return false
	}
	for _, r := range relays {
		if r.Status != types.TxStatusSuccess {
			return false
		}
	}
	return true
}

// maybeAutoPay performs the single automatic wallet submission for a payable
// order. The latch is set synchronously with initiating the submission, so a
// second pass while the async call is still in flight can never submit a
// second transaction for the same order. After a failed submission the
// machine holds off until the user acts (RetryPayment, method change, or
// back); the poll loop never resubmits on its own.
func (m *Machine) maybeAutoPay(ctx context.Context) {
	m.mu.Lock()
	if !m.ready || m.payAttempted || m.payFailed || !m.payableLocked() {
		m.mu.Unlock()
		return
	}

	req, err := m.paymentRequestLocked()
	if err != nil {
		m.mu.Unlock()
		m.reportError(err)
		return
	}

	m.payAttempted = true
	gen := m.gen
	orderID := m.orderID
	m.mu.Unlock()

	go m.submit(ctx, gen, orderID, req)
}

// RetryPayment re-arms the wallet submission after a failed attempt. Retrying
// is always a deliberate user action; this is the only way a rejected or
// failed submission is run again for the same payment method.
func (m *Machine) RetryPayment(ctx context.Context) {
	m.mu.Lock()
	if !m.payFailed {
		// Nothing failed, or a submission is still in flight.
		m.mu.Unlock()
		return
	}
	m.payFailed = false
	m.payAttempted = false
	m.mu.Unlock()

	m.maybeAutoPay(ctx)
}

// TopUp submits a secondary payment covering the current deficit, for orders
// where a partial deposit arrived. No new order is created. It is a
// deliberate user action and bypasses the auto-pay latch. The submitted flag
// is set synchronously so a second call cannot double-pay while the first
// transfer is in flight or still unseen by the backend.
func (m *Machine) TopUp(ctx context.Context) error {
	m.mu.Lock()
	o := m.current
	if o == nil || !o.Order.Status.IsWaitingForPayment() {
		m.mu.Unlock()
		return fmt.Errorf("order is not accepting payments")
	}
	if m.submitted {
		m.mu.Unlock()
		return fmt.Errorf("payment already submitted for order %s", o.Order.ID)
	}
	req, err := m.paymentRequestLocked()
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.submitted = true
	gen := m.gen
	orderID := m.orderID
	m.mu.Unlock()
	m.notify()

	go m.submit(ctx, gen, orderID, req)
	return nil
}

// paymentRequestLocked builds the transfer that covers the remaining
// deficit. m.mu must be held.
func (m *Machine) paymentRequestLocked() (watcher.SubmitRequest, error) {
	o := m.current
	deficit := Deficit(o)
	if deficit.Sign() <= 0 {
		return watcher.SubmitRequest{}, fmt.Errorf("order %s is fully funded", o.Order.ID)
	}
	to := o.Order.GlobalAddress
	if to == "" {
		return watcher.SubmitRequest{}, fmt.Errorf("order %s has no deposit address", o.Order.ID)
	}
	return watcher.SubmitRequest{
		ChainID:      o.Order.SrcChain,
		To:           to,
		TokenAddress: o.Order.SrcTokenAddress,
		Amount:       deficit,
	}, nil
}

// submit runs one wallet submission. A failure parks the machine until the
// user retries; it is surfaced as recoverable, never fatal to the flow.
func (m *Machine) submit(ctx context.Context, gen uint64, orderID string, req watcher.SubmitRequest) {
	if m.submitter == nil {
		m.failSubmission(gen, orderID, watcher.ErrChainUnsupported)
		return
	}

	txHash, err := m.submitter.Submit(ctx, req)

	m.mu.Lock()
	if gen != m.gen || m.orderID != orderID {
		// Payment method changed or flow restarted while the wallet prompt
		// was open; drop the result.
		m.mu.Unlock()
		m.log.Debug().Str("orderId", orderID).Msg("discarding superseded submission result")
		return
	}
	if err != nil {
		m.payAttempted = false
		m.payFailed = true
		m.submitted = false
		m.mu.Unlock()
		m.log.Warn().Err(err).Str("orderId", orderID).Msg("payment submission failed")
		m.reportError(err)
		m.notify()
		return
	}
	m.waitingForDeposit = true
	m.submitted = true
	m.mu.Unlock()

	m.log.Info().Str("orderId", orderID).Str("txHash", txHash).Msg("payment submitted")
	m.notify()
}

func (m *Machine) failSubmission(gen uint64, orderID string, err error) {
	m.mu.Lock()
	if gen == m.gen && m.orderID == orderID {
		m.payAttempted = false
		m.payFailed = true
		m.submitted = false
	}
	m.mu.Unlock()
	m.reportError(err)
	m.notify()
}

// Deficit is the shortfall between the required deposit and the amount the
// backend has observed so far: max(0, required - sum(deposits)). An order is
// fully funded exactly when this is zero.
func Deficit(o *types.OrderAndTransactions) *big.Int {
	if o == nil {
		return big.NewInt(0)
	}
	required, ok := new(big.Int).SetString(o.Order.SrcAmount, 10)
	if !ok || required.Sign() < 0 {
		return big.NewInt(0)
	}

	deposited := new(big.Int)
	for _, tx := range o.DepositTxs {
		amt, ok := new(big.Int).SetString(tx.Amount, 10)
		if !ok {
			continue
		}
		deposited.Add(deposited, amt)
	}

	deficit := new(big.Int).Sub(required, deposited)
	if deficit.Sign() < 0 {
		return big.NewInt(0)
	}
	return deficit
}
