package watcher

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

// EVMBalanceReader reads native and ERC-20 balances across configured EVM
// networks.
type EVMBalanceReader struct {
	mu      sync.RWMutex
	clients map[types.ChainID]*ethclient.Client
	abi     abi.ABI
}

// NewEVMBalanceReader returns a reader with no networks attached.
func NewEVMBalanceReader() (*EVMBalanceReader, error) {
	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}
	return &EVMBalanceReader{
		clients: make(map[types.ChainID]*ethclient.Client),
		abi:     parsedABI,
	}, nil
}

// AddNetwork connects a chain's RPC endpoint.
func (r *EVMBalanceReader) AddNetwork(chain types.ChainID, rpcURL string) error {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}
	r.mu.Lock()
	r.clients[chain] = client
	r.mu.Unlock()
	return nil
}

// Balance implements BalanceReader.
func (r *EVMBalanceReader) Balance(ctx context.Context, chain types.ChainID, token, address string) (*big.Int, error) {
	r.mu.RLock()
	client, ok := r.clients[chain]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("chain %d: %w", chain, ErrChainUnsupported)
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address: %s", address)
	}

	if token == "" || token == types.NativeTokenAddress {
		balance, err := client.BalanceAt(ctx, common.HexToAddress(address), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get balance: %w", err)
		}
		return balance, nil
	}

	if !common.IsHexAddress(token) {
		return nil, fmt.Errorf("invalid token contract address: %s", token)
	}
	return erc20Balance(ctx, client, r.abi, common.HexToAddress(token), common.HexToAddress(address))
}

// Close closes all client connections.
func (r *EVMBalanceReader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		c.Close()
	}
}
