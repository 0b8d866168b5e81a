package types

import "github.com/shopspring/decimal"

// QuoteDirection selects which side of the trade the user has fixed.
type QuoteDirection string

const (
	// ExactInput fixes the amount the user sends.
	ExactInput QuoteDirection = "EXACT_INPUT"
	// ExactOutput fixes the amount the user wants to receive.
	ExactOutput QuoteDirection = "EXACT_OUTPUT"
)

// QuoteRequest carries the parameters of a single pricing request. Amount is
// an integer string in the smallest unit of the driving side's token.
type QuoteRequest struct {
	Direction QuoteDirection `json:"direction"`
	SrcChain  ChainID        `json:"srcChain"`
	DstChain  ChainID        `json:"dstChain"`
	SrcToken  Token          `json:"srcToken"`
	DstToken  Token          `json:"dstToken"`
	Amount    string         `json:"amount"`
}

// Quote is an immutable priced snapshot for one request. It is never
// persisted; it is re-derived from current inputs on every change.
type Quote struct {
	Direction    QuoteDirection  `json:"direction"`
	SrcChain     ChainID         `json:"srcChain"`
	DstChain     ChainID         `json:"dstChain"`
	SrcToken     Token           `json:"srcToken"`
	DstToken     Token           `json:"dstToken"`
	SrcAmount    string          `json:"srcAmount"`
	DstAmount    string          `json:"dstAmount"`
	SrcAmountUSD decimal.Decimal `json:"srcAmountUsd"`
	DstAmountUSD decimal.Decimal `json:"dstAmountUsd"`
	FeeBps       int32           `json:"feeBps"`
	FeeType      string          `json:"feeType,omitempty"`
}
