package flow

import (
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

// Query parameter names shared with the widget's web build.
const (
	paramTab                 = "tab"
	paramFromChainID         = "fromChainId"
	paramFromCurrency        = "fromCurrency"
	paramFromAmount          = "fromAmount"
	paramToChainID           = "toChainId"
	paramToCurrency          = "toCurrency"
	paramToAmount            = "toAmount"
	paramOrderID             = "orderId"
	paramPaymentMethod       = "paymentMethod"
	paramCryptoPaymentMethod = "cryptoPaymentMethod"
	paramWaitingForDeposit   = "waitingForDeposit"
)

// URLState is the subset of flow state mirrored into the query string.
type URLState struct {
	Tab                 types.Tab
	FromChainID         types.ChainID
	FromCurrency        string
	FromAmount          string
	ToChainID           types.ChainID
	ToCurrency          string
	ToAmount            string
	OrderID             string
	PaymentMethod       types.PaymentMethod
	CryptoPaymentMethod types.PaymentMethod
	WaitingForDeposit   bool
}

// Router is the host page's query-string access. Implementations write
// history entries; Sync diffs before calling Replace so keystrokes don't
// flood the history.
type Router interface {
	Query() url.Values
	Replace(q url.Values)
}

// Sync reconciles URLState with the router's query string: parse once on
// startup, write back only while the flow is on its main panel with no
// active order.
type Sync struct {
	router Router

	mu          sync.Mutex
	parsed      bool
	lastWritten string
}

// NewSync creates a sync over the given router.
func NewSync(router Router) *Sync {
	return &Sync{router: router}
}

// ParseOnce reads the initial URL exactly once and returns the seeded state.
// Subsequent calls report ok=false so the seed can never re-trigger a
// write-back loop.
func (s *Sync) ParseOnce() (URLState, bool) {
	s.mu.Lock()
	if s.parsed {
		s.mu.Unlock()
		return URLState{}, false
	}
	s.parsed = true
	s.mu.Unlock()

	q := s.router.Query()
	state := URLState{
		Tab:                 types.Tab(q.Get(paramTab)),
		FromCurrency:        q.Get(paramFromCurrency),
		FromAmount:          q.Get(paramFromAmount),
		ToCurrency:          q.Get(paramToCurrency),
		ToAmount:            q.Get(paramToAmount),
		OrderID:             q.Get(paramOrderID),
		PaymentMethod:       types.PaymentMethod(q.Get(paramPaymentMethod)),
		CryptoPaymentMethod: types.PaymentMethod(q.Get(paramCryptoPaymentMethod)),
	}
	if v, err := strconv.ParseInt(q.Get(paramFromChainID), 10, 64); err == nil {
		state.FromChainID = types.ChainID(v)
	}
	if v, err := strconv.ParseInt(q.Get(paramToChainID), 10, 64); err == nil {
		state.ToChainID = types.ChainID(v)
	}
	if v, err := strconv.ParseBool(q.Get(paramWaitingForDeposit)); err == nil {
		state.WaitingForDeposit = v
	}
	return state, true
}

// Write mirrors state into the query string. Writes are suppressed until the
// initial parse has happened, while a panel other than main is shown, and
// while an order is active, so the sync never fights the order-detail deep
// link. Identical consecutive states are not re-written.
func (s *Sync) Write(state URLState, view View, orderActive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.parsed || view != ViewMain || orderActive {
		return
	}

	q := encode(state)
	encoded := q.Encode()
	if encoded == s.lastWritten {
		return
	}
	s.lastWritten = encoded
	s.router.Replace(q)
}

// ClearOrderParams drops the order deep-link parameters, used when the user
// navigates back to the main panel.
func (s *Sync) ClearOrderParams() {
	q := s.router.Query()
	q.Del(paramOrderID)
	q.Del(paramWaitingForDeposit)
	q.Del(paramCryptoPaymentMethod)

	s.mu.Lock()
	s.lastWritten = q.Encode()
	s.mu.Unlock()
	s.router.Replace(q)
}

func encode(state URLState) url.Values {
	q := url.Values{}
	setNonEmpty(q, paramTab, string(state.Tab))
	if state.FromChainID != 0 {
		q.Set(paramFromChainID, fmt.Sprint(state.FromChainID))
	}
	setNonEmpty(q, paramFromCurrency, state.FromCurrency)
	setNonEmpty(q, paramFromAmount, state.FromAmount)
	if state.ToChainID != 0 {
		q.Set(paramToChainID, fmt.Sprint(state.ToChainID))
	}
	setNonEmpty(q, paramToCurrency, state.ToCurrency)
	setNonEmpty(q, paramToAmount, state.ToAmount)
	setNonEmpty(q, paramOrderID, state.OrderID)
	setNonEmpty(q, paramPaymentMethod, string(state.PaymentMethod))
	setNonEmpty(q, paramCryptoPaymentMethod, string(state.CryptoPaymentMethod))
	if state.WaitingForDeposit {
		q.Set(paramWaitingForDeposit, "true")
	}
	return q
}

func setNonEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
