package lifecycle

import "github.com/b3dotfun/anyspend-go/pkg/types"

// Stage is the machine's position in the flow, projected for panel
// selection. It is computed from order state, never stored.
type Stage string

const (
	StageIdle              Stage = "idle"
	StageCreating          Stage = "creating"
	StageLoading           Stage = "loading"
	StageAwaitingPayment   Stage = "awaiting_payment"
	StageAwaitingDeposit   Stage = "awaiting_deposit"
	StageAwaitingCollector Stage = "awaiting_collector"
	StageProcessing        Stage = "processing"
	StageExecuted          Stage = "executed"
	StageExpired           Stage = "expired"
	StageRefunding         Stage = "refunding"
	StageRefunded          Stage = "refunded"
	StageFailed            Stage = "failed"
)

// IsTerminal reports whether the stage ends the flow.
func (s Stage) IsTerminal() bool {
	switch s {
	case StageExecuted, StageExpired, StageRefunded, StageFailed:
		return true
	}
	return false
}

// stageLocked projects the current stage. m.mu must be held.
func (m *Machine) stageLocked() Stage {
	if m.creating {
		return StageCreating
	}
	if m.current == nil {
		if m.orderID == "" {
			return StageIdle
		}
		return StageLoading
	}

	o := m.current
	switch o.Order.Status {
	case types.OrderStatusExecuted:
		return StageExecuted
	case types.OrderStatusExpired:
		return StageExpired
	case types.OrderStatusRefunded:
		return StageRefunded
	case types.OrderStatusFailure:
		return StageFailed
	case types.OrderStatusRefunding:
		return StageRefunding
	case types.OrderStatusQuotingAfterDeposit,
		types.OrderStatusSendingTokenFromVault,
		types.OrderStatusRelay,
		types.OrderStatusExecuting:
		return StageProcessing
	}

	// Still waiting for funds.
	if o.Order.IsFiat() {
		if m.waitingForDeposit {
			return StageProcessing
		}
		return StageAwaitingCollector
	}
	if len(o.DepositTxs) > 0 && Deficit(o).Sign() == 0 {
		return StageProcessing
	}
	if m.submitted {
		// A wallet payment went out but the backend has not observed it yet.
		return StageProcessing
	}
	if m.payableLocked() || m.topUpAvailableLocked() {
		return StageAwaitingPayment
	}
	if m.waitingForDeposit && len(o.DepositTxs) == 0 {
		return StageProcessing
	}
	return StageAwaitingDeposit
}

// topUpAvailableLocked reports whether a partial deposit left a deficit the
// user can cover with a secondary wallet payment. A top-up already sent but
// not yet observed by the backend suppresses the offer. m.mu must be held.
func (m *Machine) topUpAvailableLocked() bool {
	o := m.current
	if o == nil || o.Order.IsFiat() {
		return false
	}
	if m.submitted {
		return false
	}
	if !o.Order.Status.IsWaitingForPayment() {
		return false
	}
	if len(o.DepositTxs) == 0 {
		return false
	}
	if Deficit(o).Sign() <= 0 {
		return false
	}
	return m.selector.Effective().IsWallet()
}
