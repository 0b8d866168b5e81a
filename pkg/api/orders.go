package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

// CreateOrderRequest creates a standard order: the paying amount and token
// are pinned up front.
type CreateOrderRequest struct {
	IdempotencyKey    string                `json:"idempotencyKey"`
	Type              types.OrderType       `json:"type"`
	SrcChain          types.ChainID         `json:"srcChain"`
	SrcTokenAddress   string                `json:"srcTokenAddress"`
	SrcAmount         string                `json:"srcAmount"`
	DstChain          types.ChainID         `json:"dstChain"`
	DstTokenAddress   string                `json:"dstTokenAddress"`
	ExpectedDstAmount string                `json:"expectedDstAmount"`
	RecipientAddress  string                `json:"recipientAddress"`
	PaymentMethod     types.PaymentMethod   `json:"paymentMethod"`
	Payload           map[string]any        `json:"payload,omitempty"`
	Onramp            *types.OnrampMetadata `json:"onrampMetadata,omitempty"`
}

// CreateDepositFirstOrderRequest allocates a deposit address before the exact
// source amount is pinned; the amount is back-computed from a quote once the
// deposit lands. Used for QR/manual transfer flows.
type CreateDepositFirstOrderRequest struct {
	IdempotencyKey   string          `json:"idempotencyKey"`
	Type             types.OrderType `json:"type"`
	SrcChain         types.ChainID   `json:"srcChain"`
	SrcTokenAddress  string          `json:"srcTokenAddress"`
	DstChain         types.ChainID   `json:"dstChain"`
	DstTokenAddress  string          `json:"dstTokenAddress"`
	RecipientAddress string          `json:"recipientAddress"`
	Payload          map[string]any  `json:"payload,omitempty"`
}

// CreateOrder creates a standard order.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*types.Order, error) {
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}
	var order types.Order
	if err := c.post(ctx, "/api/orders", req, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// CreateDepositFirstOrder creates a deposit-first order. The returned order
// carries the GlobalAddress the backend expects funds at.
func (c *Client) CreateDepositFirstOrder(ctx context.Context, req CreateDepositFirstOrderRequest) (*types.Order, error) {
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}
	var order types.Order
	if err := c.post(ctx, "/api/orders/deposit-first", req, &order); err != nil {
		return nil, fmt.Errorf("create deposit-first order: %w", err)
	}
	if order.GlobalAddress == "" {
		return nil, fmt.Errorf("deposit-first order %s missing deposit address", order.ID)
	}
	return &order, nil
}

// CreateOnrampOrder creates a fiat order routed through a hosted onramp
// vendor. The engine never submits a transaction for these; settlement starts
// once the collector reports success.
func (c *Client) CreateOnrampOrder(ctx context.Context, req CreateOrderRequest) (*types.Order, error) {
	if req.Onramp == nil {
		return nil, fmt.Errorf("onramp order requires onramp metadata")
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}
	var order types.Order
	if err := c.post(ctx, "/api/orders/onramp", req, &order); err != nil {
		return nil, fmt.Errorf("create onramp order: %w", err)
	}
	return &order, nil
}

// GetOrder fetches an order and its settlement transactions.
func (c *Client) GetOrder(ctx context.Context, id string) (*types.OrderAndTransactions, error) {
	if id == "" {
		return nil, fmt.Errorf("order id is required")
	}
	var out types.OrderAndTransactions
	if err := c.get(ctx, "/api/orders/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return &out, nil
}

// GetOrderHistory lists orders created for an address, newest first.
func (c *Client) GetOrderHistory(ctx context.Context, address string, limit int) ([]types.Order, error) {
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}
	q := url.Values{"address": {address}}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	var out struct {
		Orders []types.Order `json:"orders"`
	}
	if err := c.get(ctx, "/api/orders", q, &out); err != nil {
		return nil, fmt.Errorf("get order history: %w", err)
	}
	return out.Orders, nil
}
