package types

import "time"

// OrderType is the destination action an order settles into.
type OrderType string

const (
	OrderTypeSwap           OrderType = "swap"
	OrderTypeMintNFT        OrderType = "mint_nft"
	OrderTypeJoinTournament OrderType = "join_tournament"
	OrderTypeFundTournament OrderType = "fund_tournament"
	OrderTypeCustom         OrderType = "custom"
	OrderTypeCustomExactIn  OrderType = "custom_exact_in"
	OrderTypeHypeDuel       OrderType = "hype_duel"
	OrderTypeX402Swap       OrderType = "x402_swap"
)

// OrderStatus is the backend-owned settlement progression. The client only
// reads these; it never forces a transition.
type OrderStatus string

const (
	OrderStatusScanningDepositTransaction OrderStatus = "scanning_deposit_transaction"
	OrderStatusWaitingStripePayment       OrderStatus = "waiting_stripe_payment"
	OrderStatusQuotingAfterDeposit        OrderStatus = "quoting_after_deposit"
	OrderStatusSendingTokenFromVault      OrderStatus = "sending_token_from_vault"
	OrderStatusRelay                      OrderStatus = "relay"
	OrderStatusExecuting                  OrderStatus = "executing"
	OrderStatusExecuted                   OrderStatus = "executed"
	OrderStatusExpired                    OrderStatus = "expired"
	OrderStatusRefunding                  OrderStatus = "refunding"
	OrderStatusRefunded                   OrderStatus = "refunded"
	OrderStatusFailure                    OrderStatus = "failure"
)

// IsTerminal reports whether no further transitions can occur.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusExecuted, OrderStatusExpired, OrderStatusRefunded, OrderStatusFailure:
		return true
	}
	return false
}

// IsWaitingForPayment reports whether the backend is still waiting for funds
// to arrive, the generic "processing" bucket a payable order sits in.
func (s OrderStatus) IsWaitingForPayment() bool {
	return s == OrderStatusScanningDepositTransaction || s == OrderStatusWaitingStripePayment
}

// TxStatus is the confirmation state of an order sub-resource transaction.
type TxStatus string

const (
	TxStatusPending TxStatus = "pending"
	TxStatusSuccess TxStatus = "success"
	TxStatusFailed  TxStatus = "failed"
)

// DepositTx is a user deposit observed by the backend for an order.
type DepositTx struct {
	TxHash  string   `json:"txHash"`
	ChainID ChainID  `json:"chainId"`
	From    string   `json:"from,omitempty"`
	Amount  string   `json:"amount"`
	Status  TxStatus `json:"status"`
}

// RelayTx is a backend-side bridging hop.
type RelayTx struct {
	TxHash string   `json:"txHash"`
	Status TxStatus `json:"status"`
}

// ExecuteTx is the backend transaction performing the destination action.
type ExecuteTx struct {
	TxHash string   `json:"txHash"`
	Status TxStatus `json:"status"`
}

// RefundTx returns funds to the payer when settlement cannot complete.
type RefundTx struct {
	TxHash string   `json:"txHash"`
	Amount string   `json:"amount"`
	Status TxStatus `json:"status"`
}

// OnrampMetadata is attached to fiat orders and consumed by the hosted
// payment collector, opaque to the settlement engine.
type OnrampMetadata struct {
	Vendor      string `json:"vendor"`
	Country     string `json:"country,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	PaymentURL  string `json:"paymentUrl,omitempty"`
}

// Settlement holds execution results populated once an order is executed.
type Settlement struct {
	ActualDstAmount string `json:"actualDstAmount,omitempty"`
}

// Order is the backend-tracked unit of a single payment/settlement attempt.
// Amounts are integer strings in the token's smallest unit.
type Order struct {
	ID                string          `json:"id"`
	Type              OrderType       `json:"type"`
	Status            OrderStatus     `json:"status"`
	SrcChain          ChainID         `json:"srcChain"`
	SrcTokenAddress   string          `json:"srcTokenAddress"`
	SrcAmount         string          `json:"srcAmount"`
	DstChain          ChainID         `json:"dstChain"`
	DstTokenAddress   string          `json:"dstTokenAddress"`
	ExpectedDstAmount string          `json:"expectedDstAmount"`
	RecipientAddress  string          `json:"recipientAddress"`
	GlobalAddress     string          `json:"globalAddress,omitempty"`
	Settlement        *Settlement     `json:"settlement,omitempty"`
	Onramp            *OnrampMetadata `json:"onrampMetadata,omitempty"`
	ErrorDetail       string          `json:"errorDetail,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	ExpiredAt         time.Time       `json:"expiredAt"`
}

// IsFiat reports whether the order is collected through an onramp vendor.
func (o *Order) IsFiat() bool {
	return o.Onramp != nil
}

// OrderAndTransactions is an order with its settlement sub-resources, as
// returned by the order detail endpoint.
type OrderAndTransactions struct {
	Order      Order       `json:"order"`
	DepositTxs []DepositTx `json:"depositTxs"`
	RelayTxs   []RelayTx   `json:"relayTxs"`
	ExecuteTx  *ExecuteTx  `json:"executeTx,omitempty"`
	RefundTxs  []RefundTx  `json:"refundTxs"`
}
