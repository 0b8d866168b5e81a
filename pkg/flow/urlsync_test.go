package flow

import (
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

// memRouter is an in-memory query-string router recording every Replace.
type memRouter struct {
	mu       sync.Mutex
	query    url.Values
	replaces int
}

func newMemRouter(raw string) *memRouter {
	q, _ := url.ParseQuery(raw)
	return &memRouter{query: q}
}

func (r *memRouter) Query() url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := url.Values{}
	for k, vs := range r.query {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

func (r *memRouter) Replace(q url.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.query = q
	r.replaces++
}

func (r *memRouter) replaceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replaces
}

func TestSync_ParseOnce(t *testing.T) {
	router := newMemRouter("tab=crypto&fromChainId=8453&fromCurrency=USDC&fromAmount=100&toChainId=1&orderId=ord-9&waitingForDeposit=true")
	s := NewSync(router)

	state, ok := s.ParseOnce()
	require.True(t, ok)
	assert.Equal(t, types.TabCrypto, state.Tab)
	assert.Equal(t, types.ChainBase, state.FromChainID)
	assert.Equal(t, "USDC", state.FromCurrency)
	assert.Equal(t, "100", state.FromAmount)
	assert.Equal(t, types.ChainEthereum, state.ToChainID)
	assert.Equal(t, "ord-9", state.OrderID)
	assert.True(t, state.WaitingForDeposit)

	// The seed applies exactly once.
	_, ok = s.ParseOnce()
	assert.False(t, ok)
}

func TestSync_ParseOnceToleratesGarbage(t *testing.T) {
	router := newMemRouter("fromChainId=notanumber&waitingForDeposit=maybe")
	s := NewSync(router)

	state, ok := s.ParseOnce()
	require.True(t, ok)
	assert.Equal(t, types.ChainID(0), state.FromChainID)
	assert.False(t, state.WaitingForDeposit)
}

func TestSync_WriteSuppressedBeforeParse(t *testing.T) {
	router := newMemRouter("")
	s := NewSync(router)

	s.Write(URLState{FromAmount: "5"}, ViewMain, false)
	assert.Equal(t, 0, router.replaceCount(), "writes before the initial parse would clobber the incoming link")
}

func TestSync_WriteSuppressedOffMainOrWithActiveOrder(t *testing.T) {
	router := newMemRouter("")
	s := NewSync(router)
	s.ParseOnce()

	s.Write(URLState{FromAmount: "5"}, ViewOrderDetails, false)
	s.Write(URLState{FromAmount: "5"}, ViewMain, true)
	assert.Equal(t, 0, router.replaceCount())

	s.Write(URLState{FromAmount: "5"}, ViewMain, false)
	assert.Equal(t, 1, router.replaceCount())
}

func TestSync_IdenticalStateWrittenOnce(t *testing.T) {
	router := newMemRouter("")
	s := NewSync(router)
	s.ParseOnce()

	state := URLState{Tab: types.TabCrypto, FromChainID: types.ChainBase, FromAmount: "100"}
	s.Write(state, ViewMain, false)
	s.Write(state, ViewMain, false)
	s.Write(state, ViewMain, false)
	assert.Equal(t, 1, router.replaceCount())

	state.FromAmount = "101"
	s.Write(state, ViewMain, false)
	assert.Equal(t, 2, router.replaceCount())
}

func TestSync_RoundTrip(t *testing.T) {
	router := newMemRouter("")
	s := NewSync(router)
	s.ParseOnce()

	want := URLState{
		Tab:                 types.TabCrypto,
		FromChainID:         types.ChainBase,
		FromCurrency:        "USDC",
		FromAmount:          "100",
		ToChainID:           types.ChainEthereum,
		ToCurrency:          "ETH",
		PaymentMethod:       types.PaymentMethodConnectWallet,
		CryptoPaymentMethod: types.PaymentMethodTransferCrypto,
		WaitingForDeposit:   true,
	}
	s.Write(want, ViewMain, false)

	reparsed := NewSync(router)
	got, ok := reparsed.ParseOnce()
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestSync_ClearOrderParams(t *testing.T) {
	router := newMemRouter("tab=crypto&orderId=ord-9&waitingForDeposit=true&cryptoPaymentMethod=transfer_crypto")
	s := NewSync(router)
	s.ParseOnce()

	s.ClearOrderParams()

	q := router.Query()
	assert.Empty(t, q.Get("orderId"))
	assert.Empty(t, q.Get("waitingForDeposit"))
	assert.Empty(t, q.Get("cryptoPaymentMethod"))
	assert.Equal(t, "crypto", q.Get("tab"), "non-order params survive")
}
