// Package watcher contains the narrow settlement helpers the lifecycle
// machine delegates to: wallet-initiated transaction submission (EVM and
// Solana) and on-chain deposit observation by balance diff. Each produces a
// transaction hash or a typed failure back to the machine.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

// Typed submission failures. The lifecycle machine treats all of these as
// recoverable: the auto-pay latch is reset so the user may retry.
var (
	ErrUserRejected     = errors.New("transaction rejected by user")
	ErrChainUnsupported = errors.New("no wallet configured for chain")
	ErrChainMismatch    = errors.New("wallet connected to wrong chain")
	ErrInsufficientGas  = errors.New("insufficient funds for gas")
)

// SubmitRequest describes one payment transaction: a native-asset or token
// transfer of Amount (smallest units) to the order's deposit address.
type SubmitRequest struct {
	ChainID      types.ChainID
	To           string
	TokenAddress string // empty or the native pseudo-address for a gas-asset transfer
	Amount       *big.Int
}

// Submitter sends one payment transaction and returns its hash. EOA and
// custodial wallets use different implementations; the lifecycle machine
// picks by effective payment method.
type Submitter interface {
	Submit(ctx context.Context, req SubmitRequest) (string, error)
}

// Router dispatches submissions to the submitter registered for the target
// chain, the SDK equivalent of switching the wallet to the correct chain
// before sending.
type Router struct {
	mu         sync.RWMutex
	submitters map[types.ChainID]Submitter
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{submitters: make(map[types.ChainID]Submitter)}
}

// Register installs a submitter for a chain, replacing any previous one.
func (r *Router) Register(chain types.ChainID, s Submitter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitters[chain] = s
}

// Submit routes the request to the submitter for req.ChainID.
func (r *Router) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	r.mu.RLock()
	s, ok := r.submitters[req.ChainID]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("chain %d: %w", req.ChainID, ErrChainUnsupported)
	}
	return s.Submit(ctx, req)
}
