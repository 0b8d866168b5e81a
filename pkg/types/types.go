package types

// ChainID identifies a supported network. EVM networks use their canonical
// chain id; Solana uses the relay-style synthetic id.
type ChainID int64

const (
	ChainEthereum ChainID = 1
	ChainBase     ChainID = 8453
	ChainArbitrum ChainID = 42161
	ChainB3       ChainID = 8333
	ChainSolana   ChainID = 792703809
)

// IsSolana reports whether the chain uses the Solana signing path.
func (c ChainID) IsSolana() bool {
	return c == ChainSolana
}

// Token describes a transferable asset on a single chain.
type Token struct {
	ChainID  ChainID `json:"chainId"`
	Address  string  `json:"address"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name,omitempty"`
	Decimals int32   `json:"decimals"`
	LogoURI  string  `json:"logoUri,omitempty"`
}

// NativeTokenAddress is the pseudo-address used for a chain's gas asset.
const NativeTokenAddress = "0x0000000000000000000000000000000000000000"

// IsNative reports whether the token is the chain's gas asset.
func (t Token) IsNative() bool {
	return t.Address == "" || t.Address == NativeTokenAddress
}

// PaymentMethod is the rail the user pays with.
type PaymentMethod string

const (
	PaymentMethodNone           PaymentMethod = ""
	PaymentMethodConnectWallet  PaymentMethod = "connect_wallet"
	PaymentMethodGlobalWallet   PaymentMethod = "global_wallet"
	PaymentMethodTransferCrypto PaymentMethod = "transfer_crypto"
	PaymentMethodFiatCard       PaymentMethod = "fiat_card"
	PaymentMethodFiatCoinbase   PaymentMethod = "fiat_coinbase"
)

// IsWallet reports whether the method settles by a client-initiated
// wallet transaction.
func (m PaymentMethod) IsWallet() bool {
	return m == PaymentMethodConnectWallet || m == PaymentMethodGlobalWallet
}

// IsFiat reports whether the method settles through an external
// payment collector.
func (m PaymentMethod) IsFiat() bool {
	return m == PaymentMethodFiatCard || m == PaymentMethodFiatCoinbase
}

// Tab is the top-level rail group shown to the user.
type Tab string

const (
	TabCrypto Tab = "crypto"
	TabFiat   Tab = "fiat"
)
