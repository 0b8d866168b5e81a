package watcher

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EVMSigner signs backend auth challenges with an EOA key using the EIP-191
// personal-message scheme. It satisfies api.Signer.
type EVMSigner struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewEVMSigner parses a hex private key into a signer.
func NewEVMSigner(privateKeyHex string) (*EVMSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	publicKey, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to get public key")
	}
	return &EVMSigner{key: key, addr: crypto.PubkeyToAddress(*publicKey)}, nil
}

// Address returns the signing address.
func (s *EVMSigner) Address() string {
	return s.addr.Hex()
}

// SignMessage signs msg with the personal-message prefix.
func (s *EVMSigner) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(msg), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return sig, nil
}
