package watcher

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

// Priority fee bounds, in micro-lamports per compute unit. The fee is taken
// from the 75th percentile of recent fees, clamped to this range.
const (
	priorityFeeFloor uint64 = 1_000
	priorityFeeCap   uint64 = 1_000_000
)

// SolanaSubmitter signs and submits payment transactions on Solana. SPL
// transfers create the recipient's associated token account when missing.
type SolanaSubmitter struct {
	client     *rpc.Client
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
	log        zerolog.Logger
}

// NewSolanaSubmitter connects to rpcURL with a base58-encoded private key.
func NewSolanaSubmitter(rpcURL, privateKeyBase58 string, log zerolog.Logger) (*SolanaSubmitter, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("RPC URL not configured for Solana")
	}
	privateKey, err := solana.PrivateKeyFromBase58(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &SolanaSubmitter{
		client:     rpc.New(rpcURL),
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
		log:        log,
	}, nil
}

// Address returns the paying address.
func (s *SolanaSubmitter) Address() string {
	return s.publicKey.String()
}

// Submit sends a SOL or SPL transfer and returns the signature.
func (s *SolanaSubmitter) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if !req.ChainID.IsSolana() {
		return "", fmt.Errorf("chain %d is not Solana: %w", req.ChainID, ErrChainMismatch)
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return "", fmt.Errorf("amount must be greater than 0")
	}
	if !req.Amount.IsUint64() {
		return "", fmt.Errorf("amount %s out of range", req.Amount)
	}
	recipient, err := solana.PublicKeyFromBase58(req.To)
	if err != nil {
		return "", fmt.Errorf("invalid deposit address: %w", err)
	}

	amount := req.Amount.Uint64()

	var instructions []solana.Instruction
	fee, err := s.priorityFee(ctx)
	if err != nil {
		// Fee history is advisory; fall back to the floor.
		s.log.Debug().Err(err).Msg("priority fee lookup failed, using floor")
		fee = priorityFeeFloor
	}
	instructions = append(instructions,
		computebudget.NewSetComputeUnitPriceInstruction(fee).Build(),
	)

	if req.TokenAddress == "" || req.TokenAddress == types.NativeTokenAddress {
		instructions = append(instructions, system.NewTransferInstruction(
			amount,
			s.publicKey,
			recipient,
		).Build())
	} else {
		splIxs, err := s.splTransferInstructions(ctx, recipient, req.TokenAddress, amount)
		if err != nil {
			return "", err
		}
		instructions = append(instructions, splIxs...)
	}

	recent, err := s.client.GetRecentBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(s.publicKey),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.publicKey) {
			return &s.privateKey
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	s.log.Info().Str("signature", sig.String()).Str("to", req.To).Msg("payment transaction submitted")
	return sig.String(), nil
}

// splTransferInstructions builds the instruction list for an SPL transfer,
// creating the destination associated token account first if required.
func (s *SolanaSubmitter) splTransferInstructions(ctx context.Context, recipient solana.PublicKey, mintStr string, amount uint64) ([]solana.Instruction, error) {
	mint, err := solana.PublicKeyFromBase58(mintStr)
	if err != nil {
		return nil, fmt.Errorf("invalid token mint address: %w", err)
	}

	source, _, err := solana.FindAssociatedTokenAddress(s.publicKey, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive source token account: %w", err)
	}
	dest, _, err := solana.FindAssociatedTokenAddress(recipient, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive destination token account: %w", err)
	}

	destExists, err := s.accountExists(ctx, dest)
	if err != nil {
		return nil, fmt.Errorf("failed to check destination account: %w", err)
	}

	var instructions []solana.Instruction
	if !destExists {
		instructions = append(instructions, associatedtokenaccount.NewCreateInstruction(
			s.publicKey, // payer
			recipient,   // wallet
			mint,        // mint
		).Build())
	}

	instructions = append(instructions, token.NewTransferInstruction(
		amount,
		source,
		dest,
		s.publicKey,
		[]solana.PublicKey{},
	).Build())

	return instructions, nil
}

// priorityFee returns the 75th percentile of recent prioritization fees,
// clamped to [priorityFeeFloor, priorityFeeCap].
func (s *SolanaSubmitter) priorityFee(ctx context.Context) (uint64, error) {
	fees, err := s.client.GetRecentPrioritizationFees(ctx, solana.PublicKeySlice{s.publicKey})
	if err != nil {
		return 0, fmt.Errorf("failed to get recent prioritization fees: %w", err)
	}
	if len(fees) == 0 {
		return priorityFeeFloor, nil
	}

	values := make([]uint64, 0, len(fees))
	for _, f := range fees {
		values = append(values, f.PrioritizationFee)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	fee := values[len(values)*3/4]
	if fee < priorityFeeFloor {
		fee = priorityFeeFloor
	}
	if fee > priorityFeeCap {
		fee = priorityFeeCap
	}
	return fee, nil
}

func (s *SolanaSubmitter) accountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	info, err := s.client.GetAccountInfo(ctx, account)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return false, nil
		}
		return false, err
	}
	return info.Value != nil, nil
}
