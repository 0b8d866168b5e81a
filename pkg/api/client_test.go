package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

func TestClient_CreateOrder(t *testing.T) {
	var gotReq CreateOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/orders", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(types.Order{
			ID:     "ord-1",
			Status: types.OrderStatusScanningDepositTransaction,
		})
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	order, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		Type:             types.OrderTypeSwap,
		SrcChain:         types.ChainBase,
		SrcAmount:        "100000000",
		RecipientAddress: "0xr",
		PaymentMethod:    types.PaymentMethodConnectWallet,
	})
	require.NoError(t, err)

	assert.Equal(t, "ord-1", order.ID)
	assert.NotEmpty(t, gotReq.IdempotencyKey, "an idempotency key is generated when none is given")
	assert.Equal(t, types.OrderTypeSwap, gotReq.Type)
}

func TestClient_CreateDepositFirstOrderRequiresDepositAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/deposit-first", r.URL.Path)
		json.NewEncoder(w).Encode(types.Order{ID: "ord-df"})
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = c.CreateDepositFirstOrder(context.Background(), CreateDepositFirstOrderRequest{
		Type:             types.OrderTypeSwap,
		RecipientAddress: "0xr",
	})
	assert.ErrorContains(t, err, "missing deposit address")
}

func TestClient_GetOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/ord-1", r.URL.Path)
		json.NewEncoder(w).Encode(types.OrderAndTransactions{
			Order:      types.Order{ID: "ord-1", Status: types.OrderStatusExecuted},
			DepositTxs: []types.DepositTx{{TxHash: "0xd", Amount: "100", Status: types.TxStatusSuccess}},
		})
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	got, err := c.GetOrder(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, types.OrderStatusExecuted, got.Order.Status)
	assert.Len(t, got.DepositTxs, 1)
}

func TestClient_GetOrderHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders", r.URL.Path)
		require.Equal(t, "0xabc", r.URL.Query().Get("address"))
		require.Equal(t, "5", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(map[string]any{
			"orders": []types.Order{{ID: "ord-1"}, {ID: "ord-2"}},
		})
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	orders, err := c.GetOrderHistory(context.Background(), "0xabc", 5)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestClient_ErrorEnvelopeDecoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    ErrCodeQuoteUnavailable,
			"message": "no route for pair",
		})
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = c.GetQuote(context.Background(), types.QuoteRequest{Amount: "100"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, ErrCodeQuoteUnavailable, apiErr.Code)
	assert.Equal(t, "no route for pair", apiErr.Message)
}

func TestClient_NonJSONErrorBodyFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = c.GetOrder(context.Background(), "ord-1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream down", apiErr.Message)
}

// countingSigner counts how many times the wallet was asked to sign.
type countingSigner struct {
	signs int32
}

func (s *countingSigner) Address() string { return "0xsigner" }

func (s *countingSigner) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	atomic.AddInt32(&s.signs, 1)
	return []byte("sig"), nil
}

func TestClient_SignatureCachedAcrossRequests(t *testing.T) {
	var headers []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get(signatureHeader))
		json.NewEncoder(w).Encode(types.OrderAndTransactions{Order: types.Order{ID: "ord-1"}})
	}))
	defer server.Close()

	signer := &countingSigner{}
	c, err := NewClient(server.URL, WithSigner(signer, time.Minute))
	require.NoError(t, err)

	_, err = c.GetOrder(context.Background(), "ord-1")
	require.NoError(t, err)
	_, err = c.GetOrder(context.Background(), "ord-1")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&signer.signs), "one signature serves both requests")
	require.Len(t, headers, 2)
	assert.Equal(t, headers[0], headers[1])
	assert.True(t, strings.HasPrefix(headers[0], "0xsigner:"))
}

func TestClient_FindToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"tokens": []types.Token{
				{ChainID: types.ChainBase, Symbol: "USDbC", Address: "0x2", Decimals: 6},
				{ChainID: types.ChainBase, Symbol: "USDC", Address: "0x1", Decimals: 6},
			},
		})
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	// Exact symbol match wins over a partial one.
	tok, err := c.FindToken(context.Background(), types.ChainBase, "usdc")
	require.NoError(t, err)
	assert.Equal(t, "0x1", tok.Address)

	_, err = c.FindToken(context.Background(), types.ChainBase, "DOGE")
	assert.Error(t, err)
}
