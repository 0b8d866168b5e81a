package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

func TestSelector_SuggestConnectedWallet(t *testing.T) {
	s := NewSelector()

	s.Suggest(WalletAvailability{HasConnectedWallet: true}, BalanceSufficient)
	assert.Equal(t, types.PaymentMethodConnectWallet, s.Effective())
}

func TestSelector_InsufficientBalanceSuggestsTransfer(t *testing.T) {
	s := NewSelector()

	s.Suggest(WalletAvailability{HasConnectedWallet: true}, BalanceInsufficient)
	assert.Equal(t, types.PaymentMethodTransferCrypto, s.Effective())
}

func TestSelector_UnknownBalanceSuspendsSuggestion(t *testing.T) {
	s := NewSelector()

	s.Suggest(WalletAvailability{HasConnectedWallet: true}, BalanceUnknown)
	assert.Equal(t, types.PaymentMethodNone, s.Effective())

	// Once the balance resolves the suggestion lands.
	s.Suggest(WalletAvailability{HasConnectedWallet: true}, BalanceSufficient)
	assert.Equal(t, types.PaymentMethodConnectWallet, s.Effective())
}

func TestSelector_GlobalWalletFallback(t *testing.T) {
	s := NewSelector()

	s.Suggest(WalletAvailability{HasGlobalWallet: true}, BalanceUnknown)
	assert.Equal(t, types.PaymentMethodGlobalWallet, s.Effective())
}

func TestSelector_UserChoiceWinsAndSticks(t *testing.T) {
	s := NewSelector()

	s.Select(types.PaymentMethodTransferCrypto)
	assert.Equal(t, types.PaymentMethodTransferCrypto, s.Effective())

	// Auto-suggestions never override an explicit user choice.
	s.Suggest(WalletAvailability{HasConnectedWallet: true}, BalanceSufficient)
	assert.Equal(t, types.PaymentMethodTransferCrypto, s.Effective())
	assert.Equal(t, types.PaymentMethodTransferCrypto, s.UserSelected())
}

func TestSelector_ResetClearsBothSlots(t *testing.T) {
	s := NewSelector()
	s.Select(types.PaymentMethodFiatCard)
	s.Suggest(WalletAvailability{HasGlobalWallet: true}, BalanceUnknown)

	s.Reset()

	assert.Equal(t, types.PaymentMethodNone, s.Effective())
	assert.Equal(t, types.PaymentMethodNone, s.UserSelected())
}

func TestSelector_NoWalletsNoSuggestion(t *testing.T) {
	s := NewSelector()

	s.Suggest(WalletAvailability{}, BalanceSufficient)
	assert.Equal(t, types.PaymentMethodNone, s.Effective())
}
