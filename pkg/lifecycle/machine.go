// Package lifecycle drives an order from creation through settlement. The
// backend is the sole authority for status transitions; the machine creates
// an order, polls it, and reacts by submitting at most one payment
// transaction or deferring to an external payment collector.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/b3dotfun/anyspend-go/pkg/api"
	"github.com/b3dotfun/anyspend-go/pkg/payment"
	"github.com/b3dotfun/anyspend-go/pkg/types"
	"github.com/b3dotfun/anyspend-go/pkg/watcher"
)

// DefaultPollInterval is the order-status poll cadence.
const DefaultPollInterval = 3 * time.Second

// Input validation errors. These block the action and are fully recoverable
// by correcting input.
var (
	ErrNoQuote          = errors.New("no quote available")
	ErrMissingRecipient = errors.New("recipient address is required")
	ErrNoPaymentMethod  = errors.New("no payment method selected")
	ErrOrderActive      = errors.New("an order is already active")
)

// OrderAPI is the backend surface the machine needs. *api.Client satisfies
// this.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*types.Order, error)
	CreateDepositFirstOrder(ctx context.Context, req api.CreateDepositFirstOrderRequest) (*types.Order, error)
	CreateOnrampOrder(ctx context.Context, req api.CreateOrderRequest) (*types.Order, error)
	GetOrder(ctx context.Context, id string) (*types.OrderAndTransactions, error)
}

// CreateParams describes one checkout attempt built from the current quote
// and selections.
type CreateParams struct {
	Type      types.OrderType
	Quote     *types.Quote
	Recipient string
	Payload   map[string]any
	Onramp    *types.OnrampMetadata
}

// Snapshot is the machine's externally visible state at one instant.
type Snapshot struct {
	OrderID           string
	Order             *types.OrderAndTransactions
	Stage             Stage
	Payable           bool
	TopUpAvailable    bool
	PaymentFailed     bool
	Deficit           *big.Int
	WaitingForDeposit bool
	Creating          bool
	Err               error
}

// Machine is the order lifecycle state machine.
type Machine struct {
	api          OrderAPI
	submitter    watcher.Submitter
	selector     *payment.Selector
	log          zerolog.Logger
	pollInterval time.Duration
	onUpdate     func(Snapshot)
	onError      func(error)

	mu                sync.Mutex
	orderID           string
	current           *types.OrderAndTransactions
	creating          bool
	ready             bool
	waitingForDeposit bool
	payAttempted      bool
	payFailed         bool
	submitted         bool
	gen               uint64
	lastErr           error
	sub               *watcher.Subscription
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithLogger plugs in a structured logger.
func WithLogger(l zerolog.Logger) MachineOption { return func(m *Machine) { m.log = l } }

// WithPollInterval overrides the status poll cadence.
func WithPollInterval(d time.Duration) MachineOption {
	return func(m *Machine) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// WithOnUpdate registers a callback invoked after every state change.
func WithOnUpdate(fn func(Snapshot)) MachineOption { return func(m *Machine) { m.onUpdate = fn } }

// WithOnError registers a callback for recoverable errors (wallet rejection,
// chain mismatch). These never terminate the flow.
func WithOnError(fn func(error)) MachineOption { return func(m *Machine) { m.onError = fn } }

// NewMachine creates a lifecycle machine. submitter may be nil when no
// wallet path is available (manual transfer and fiat still work).
func NewMachine(backend OrderAPI, submitter watcher.Submitter, selector *payment.Selector, opts ...MachineOption) *Machine {
	m := &Machine{
		api:          backend,
		submitter:    submitter,
		selector:     selector,
		log:          zerolog.Nop(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetReady marks all referenced token/amount data as loaded. Auto-payment
// never runs before this gate opens, so a transaction is never built from
// placeholder amounts.
func (m *Machine) SetReady(ready bool) {
	m.mu.Lock()
	m.ready = ready
	m.mu.Unlock()
	m.notify()
}

// Snapshot returns the current externally visible state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	snap := Snapshot{
		OrderID:           m.orderID,
		Order:             m.current,
		Payable:           m.payableLocked(),
		TopUpAvailable:    m.topUpAvailableLocked(),
		PaymentFailed:     m.payFailed,
		WaitingForDeposit: m.waitingForDeposit,
		Creating:          m.creating,
		Err:               m.lastErr,
	}
	if m.current != nil {
		snap.Deficit = Deficit(m.current)
	}
	snap.Stage = m.stageLocked()
	return snap
}

// Create creates a standard order from a quote and starts polling it. The
// amount is fixed up front; the caller already knows what they are sending.
func (m *Machine) Create(ctx context.Context, p CreateParams) (string, error) {
	method := m.selector.Effective()
	if err := m.validateCreate(p, method); err != nil {
		return "", err
	}
	if method.IsFiat() {
		return "", fmt.Errorf("fiat orders go through CreateOnramp")
	}

	req := api.CreateOrderRequest{
		Type:              p.Type,
		SrcChain:          p.Quote.SrcChain,
		SrcTokenAddress:   p.Quote.SrcToken.Address,
		SrcAmount:         p.Quote.SrcAmount,
		DstChain:          p.Quote.DstChain,
		DstTokenAddress:   p.Quote.DstToken.Address,
		ExpectedDstAmount: p.Quote.DstAmount,
		RecipientAddress:  p.Recipient,
		PaymentMethod:     method,
		Payload:           p.Payload,
	}

	return m.create(ctx, func(ctx context.Context) (*types.Order, error) {
		return m.api.CreateOrder(ctx, req)
	})
}

// CreateDepositFirst allocates a deposit address before the exact amount is
// pinned, for QR/manual-transfer flows. Switching payment method while the
// creation is in flight invalidates the result so a stale deposit address is
// never surfaced.
func (m *Machine) CreateDepositFirst(ctx context.Context, p CreateParams) (string, error) {
	if p.Quote == nil {
		return "", ErrNoQuote
	}
	if p.Recipient == "" {
		return "", ErrMissingRecipient
	}

	req := api.CreateDepositFirstOrderRequest{
		Type:             p.Type,
		SrcChain:         p.Quote.SrcChain,
		SrcTokenAddress:  p.Quote.SrcToken.Address,
		DstChain:         p.Quote.DstChain,
		DstTokenAddress:  p.Quote.DstToken.Address,
		RecipientAddress: p.Recipient,
		Payload:          p.Payload,
	}

	return m.create(ctx, func(ctx context.Context) (*types.Order, error) {
		return m.api.CreateDepositFirstOrder(ctx, req)
	})
}

// CreateOnramp creates a fiat order. The machine submits no transaction for
// these; settlement begins once the hosted collector reports success through
// CollectorSucceeded.
func (m *Machine) CreateOnramp(ctx context.Context, p CreateParams) (string, error) {
	method := m.selector.Effective()
	if err := m.validateCreate(p, method); err != nil {
		return "", err
	}
	if !method.IsFiat() {
		return "", fmt.Errorf("payment method %s is not a fiat rail", method)
	}
	if p.Onramp == nil {
		return "", fmt.Errorf("onramp metadata is required")
	}

	req := api.CreateOrderRequest{
		Type:              p.Type,
		SrcChain:          p.Quote.SrcChain,
		SrcTokenAddress:   p.Quote.SrcToken.Address,
		SrcAmount:         p.Quote.SrcAmount,
		DstChain:          p.Quote.DstChain,
		DstTokenAddress:   p.Quote.DstToken.Address,
		ExpectedDstAmount: p.Quote.DstAmount,
		RecipientAddress:  p.Recipient,
		PaymentMethod:     method,
		Payload:           p.Payload,
		Onramp:            p.Onramp,
	}

	return m.create(ctx, func(ctx context.Context) (*types.Order, error) {
		return m.api.CreateOnrampOrder(ctx, req)
	})
}

func (m *Machine) validateCreate(p CreateParams, method types.PaymentMethod) error {
	if p.Quote == nil {
		return ErrNoQuote
	}
	if p.Quote.SrcAmount == "" || p.Quote.SrcAmount == "0" {
		return fmt.Errorf("invalid source amount")
	}
	if p.Recipient == "" {
		return ErrMissingRecipient
	}
	if method == types.PaymentMethodNone {
		return ErrNoPaymentMethod
	}
	return nil
}

// create runs one creation call under the supersession generation and, when
// still current, adopts the order and starts polling.
func (m *Machine) create(ctx context.Context, fn func(context.Context) (*types.Order, error)) (string, error) {
	m.mu.Lock()
	if m.orderID != "" {
		m.mu.Unlock()
		return "", ErrOrderActive
	}
	m.gen++
	gen := m.gen
	m.creating = true
	m.lastErr = nil
	m.mu.Unlock()
	m.notify()

	order, err := fn(ctx)

	m.mu.Lock()
	if gen != m.gen {
		// Superseded (payment method changed or flow restarted) while the
		// call was in flight; the order will settle or expire server-side.
		m.mu.Unlock()
		m.log.Debug().Msg("discarding superseded order creation")
		return "", context.Canceled
	}
	m.creating = false
	if err != nil {
		m.lastErr = err
		m.mu.Unlock()
		m.notify()
		return "", err
	}
	m.orderID = order.ID
	m.current = &types.OrderAndTransactions{Order: *order}
	m.mu.Unlock()
	m.notify()

	m.startPolling(ctx)
	m.log.Info().Str("orderId", order.ID).Str("status", string(order.Status)).Msg("order created")
	return order.ID, nil
}

// Resume attaches to an existing order id (e.g. reconstructed from a shared
// or reloaded URL), skipping quoting and creation entirely.
func (m *Machine) Resume(ctx context.Context, orderID string) error {
	if orderID == "" {
		return fmt.Errorf("order id is required")
	}

	m.mu.Lock()
	if m.orderID != "" && m.orderID != orderID {
		m.mu.Unlock()
		return ErrOrderActive
	}
	m.gen++
	m.orderID = orderID
	m.lastErr = nil
	m.mu.Unlock()

	// Fetch once up front so the caller sees a concrete state immediately.
	got, err := m.api.GetOrder(ctx, orderID)
	if err != nil {
		m.mu.Lock()
		m.lastErr = err
		m.mu.Unlock()
		m.notify()
		return err
	}
	m.applyUpdate(ctx, got)

	m.startPolling(ctx)
	m.log.Info().Str("orderId", orderID).Msg("resumed order")
	return nil
}

// CollectorSucceeded is the callback for the external fiat payment
// collector. From here on the order is treated exactly like a crypto order
// for the purposes of status polling.
func (m *Machine) CollectorSucceeded(ctx context.Context, orderID string) {
	m.mu.Lock()
	if m.orderID != orderID {
		m.mu.Unlock()
		return
	}
	m.waitingForDeposit = true
	m.mu.Unlock()
	m.notify()
}

// Back returns to the main panel: transient client flags are cleared and
// polling stops. The backend order is never cancelled; it settles or expires
// server-side.
func (m *Machine) Back() {
	m.mu.Lock()
	m.gen++
	m.orderID = ""
	m.current = nil
	m.creating = false
	m.waitingForDeposit = false
	m.payAttempted = false
	m.payFailed = false
	m.submitted = false
	m.lastErr = nil
	sub := m.sub
	m.sub = nil
	m.mu.Unlock()

	if sub != nil {
		sub.Dispose()
	}
	m.notify()
}

// PaymentMethodChanged must be called when the user switches the crypto
// payment method mid-flow. Any in-flight deposit-first creation or
// auto-submission result is invalidated, and the auto-pay latch reopens for
// the new method.
func (m *Machine) PaymentMethodChanged() {
	m.mu.Lock()
	m.gen++
	if !m.waitingForDeposit {
		m.payAttempted = false
		m.payFailed = false
	}
	m.mu.Unlock()
	m.notify()
}

func (m *Machine) notify() {
	if m.onUpdate == nil {
		return
	}
	m.onUpdate(m.Snapshot())
}

func (m *Machine) reportError(err error) {
	if m.onError != nil {
		m.onError(err)
	}
}
