package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

const signatureHeader = "X-Wallet-Signature"

// Signer produces a wallet signature over the backend's auth challenge. Both
// EOA and custodial wallets satisfy this.
type Signer interface {
	Address() string
	SignMessage(ctx context.Context, msg []byte) ([]byte, error)
}

// authCache holds a short-lived signature header so every request does not
// prompt the wallet again.
type authCache struct {
	signer Signer
	ttl    time.Duration

	mu        sync.Mutex
	header    string
	expiresAt time.Time
}

func newAuthCache(s Signer, ttl time.Duration) *authCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &authCache{signer: s, ttl: ttl}
}

// Header returns the cached signature header, re-signing when expired.
func (a *authCache) Header(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	if a.header != "" && now.Before(a.expiresAt) {
		return a.header, nil
	}

	issued := now.Unix()
	msg := fmt.Sprintf("anyspend:auth:%s:%d", a.signer.Address(), issued)
	sig, err := a.signer.SignMessage(ctx, []byte(msg))
	if err != nil {
		return "", fmt.Errorf("sign auth challenge: %w", err)
	}

	a.header = fmt.Sprintf("%s:%d:%s", a.signer.Address(), issued, base64.StdEncoding.EncodeToString(sig))
	a.expiresAt = now.Add(a.ttl)
	return a.header, nil
}
