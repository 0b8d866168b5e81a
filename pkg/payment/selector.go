// Package payment tracks how and where an order gets paid: the payment rail
// (wallet, manual transfer, fiat) and the destination address. Both use a
// dual auto/user-selected model where an explicit user choice always wins.
package payment

import (
	"sync"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

// BalanceState is the resolution state of the source-token balance query.
// A suggestion is never made from an unknown balance.
type BalanceState int

const (
	BalanceUnknown BalanceState = iota
	BalanceInsufficient
	BalanceSufficient
)

// WalletAvailability describes which wallet kinds are currently connected.
type WalletAvailability struct {
	HasConnectedWallet bool
	HasGlobalWallet    bool
}

// Selector holds the auto-suggested and user-selected payment method slots.
type Selector struct {
	mu   sync.Mutex
	auto types.PaymentMethod
	user types.PaymentMethod
}

// NewSelector returns a selector with both slots empty.
func NewSelector() *Selector {
	return &Selector{}
}

// Effective returns the payment method to use: the user-selected value when
// set, otherwise the auto-suggested one.
func (s *Selector) Effective() types.PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != types.PaymentMethodNone {
		return s.user
	}
	return s.auto
}

// Select records an explicit user choice. It is sticky until Reset.
func (s *Selector) Select(m types.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = m
}

// UserSelected returns the sticky user slot.
func (s *Selector) UserSelected() types.PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Suggest updates the auto slot from wallet availability and balance
// sufficiency. It never overrides an explicit user choice, and it suspends
// the decision entirely while the balance query has not resolved for a
// connected wallet.
func (s *Selector) Suggest(wallets WalletAvailability, balance BalanceState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != types.PaymentMethodNone {
		return
	}

	switch {
	case wallets.HasConnectedWallet:
		switch balance {
		case BalanceUnknown:
			// Suspend until the balance query resolves.
			return
		case BalanceSufficient:
			s.auto = types.PaymentMethodConnectWallet
		default:
			// Don't suggest a wallet-pay path the user can't complete.
			s.auto = types.PaymentMethodTransferCrypto
		}
	case wallets.HasGlobalWallet:
		s.auto = types.PaymentMethodGlobalWallet
	default:
		s.auto = types.PaymentMethodNone
	}
}

// Reset clears both slots. Called on tab switch (crypto <-> fiat) and on
// flow restart.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auto = types.PaymentMethodNone
	s.user = types.PaymentMethodNone
}
