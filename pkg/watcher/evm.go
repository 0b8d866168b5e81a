package watcher

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

// ERC20 transfer and balanceOf function ABI
const erc20ABI = `[{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"},{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"}]`

// EVMSubmitter signs and submits payment transactions on one EVM network.
type EVMSubmitter struct {
	chainID    types.ChainID
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	from       common.Address
	abi        abi.ABI
	log        zerolog.Logger
}

// NewEVMSubmitter connects to rpcURL and prepares a submitter for chainID.
// The node's reported chain id must match or submission refuses with
// ErrChainMismatch.
func NewEVMSubmitter(chainID types.ChainID, rpcURL, privateKeyHex string, log zerolog.Logger) (*EVMSubmitter, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("RPC URL not configured for chain %d", chainID)
	}
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to get public key")
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	return &EVMSubmitter{
		chainID:    chainID,
		client:     client,
		privateKey: privateKey,
		from:       crypto.PubkeyToAddress(*publicKey),
		abi:        parsedABI,
		log:        log,
	}, nil
}

// Address returns the paying address.
func (e *EVMSubmitter) Address() string {
	return e.from.Hex()
}

// Submit sends a native or ERC-20 transfer and returns the transaction hash.
func (e *EVMSubmitter) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if req.ChainID != e.chainID {
		return "", fmt.Errorf("submitter is on chain %d, order needs %d: %w", e.chainID, req.ChainID, ErrChainMismatch)
	}
	if !common.IsHexAddress(req.To) {
		return "", fmt.Errorf("invalid deposit address: %s", req.To)
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return "", fmt.Errorf("amount must be greater than 0")
	}

	// Verify the node agrees on the chain before signing anything.
	nodeChainID, err := e.client.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get chain id: %w", err)
	}
	if nodeChainID.Int64() != int64(e.chainID) {
		return "", fmt.Errorf("node reports chain %s, expected %d: %w", nodeChainID, e.chainID, ErrChainMismatch)
	}

	nonce, err := e.client.PendingNonceAt(ctx, e.from)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}
	gasPrice, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get gas price: %w", err)
	}

	var tx *ethtypes.Transaction
	if req.TokenAddress == "" || req.TokenAddress == types.NativeTokenAddress {
		tx, err = e.buildNativeTransfer(ctx, req, nonce, gasPrice)
	} else {
		tx, err = e.buildERC20Transfer(ctx, req, nonce, gasPrice)
	}
	if err != nil {
		return "", err
	}

	signedTx, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(big.NewInt(int64(e.chainID))), e.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := e.client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	e.log.Info().
		Str("txHash", signedTx.Hash().Hex()).
		Int64("chainId", int64(e.chainID)).
		Str("to", req.To).
		Msg("payment transaction submitted")

	return signedTx.Hash().Hex(), nil
}

func (e *EVMSubmitter) buildNativeTransfer(ctx context.Context, req SubmitRequest, nonce uint64, gasPrice *big.Int) (*ethtypes.Transaction, error) {
	balance, err := e.client.BalanceAt(ctx, e.from, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	if balance.Cmp(req.Amount) < 0 {
		return nil, fmt.Errorf("insufficient balance: have %s wei, need %s wei: %w", balance, req.Amount, ErrInsufficientGas)
	}

	return ethtypes.NewTransaction(
		nonce,
		common.HexToAddress(req.To),
		req.Amount,
		21000,
		gasPrice,
		nil,
	), nil
}

func (e *EVMSubmitter) buildERC20Transfer(ctx context.Context, req SubmitRequest, nonce uint64, gasPrice *big.Int) (*ethtypes.Transaction, error) {
	if !common.IsHexAddress(req.TokenAddress) {
		return nil, fmt.Errorf("invalid token contract address: %s", req.TokenAddress)
	}
	tokenAddress := common.HexToAddress(req.TokenAddress)

	balance, err := erc20Balance(ctx, e.client, e.abi, tokenAddress, e.from)
	if err != nil {
		return nil, fmt.Errorf("failed to get token balance: %w", err)
	}
	if balance.Cmp(req.Amount) < 0 {
		return nil, fmt.Errorf("insufficient token balance: have %s, need %s", balance, req.Amount)
	}

	data, err := e.abi.Pack("transfer", common.HexToAddress(req.To), req.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack transfer data: %w", err)
	}

	gasLimit := uint64(100000)
	msg := ethereum.CallMsg{From: e.from, To: &tokenAddress, Data: data}
	if estimated, err := e.client.EstimateGas(ctx, msg); err == nil {
		gasLimit = estimated * 120 / 100
	}

	return ethtypes.NewTransaction(
		nonce,
		tokenAddress,
		big.NewInt(0),
		gasLimit,
		gasPrice,
		data,
	), nil
}

// erc20Balance reads balanceOf(account) on a token contract.
func erc20Balance(ctx context.Context, client *ethclient.Client, parsedABI abi.ABI, token, account common.Address) (*big.Int, error) {
	data, err := parsedABI.Pack("balanceOf", account)
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf data: %w", err)
	}
	result, err := client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call balanceOf: %w", err)
	}
	return new(big.Int).SetBytes(result), nil
}

// Close closes the client connection.
func (e *EVMSubmitter) Close() {
	if e.client != nil {
		e.client.Close()
	}
}
