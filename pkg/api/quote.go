package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/b3dotfun/anyspend-go/pkg/types"
)

// GetQuote prices a trade. The amount in req is an integer string in the
// smallest unit of the driving side for the requested direction.
func (c *Client) GetQuote(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
	if req.Amount == "" || req.Amount == "0" {
		return nil, fmt.Errorf("quote amount must be greater than 0")
	}
	var quote types.Quote
	if err := c.post(ctx, "/api/quote", req, &quote); err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return &quote, nil
}

// GetTokenList returns the supported tokens for a chain. chain <= 0 returns
// all chains.
func (c *Client) GetTokenList(ctx context.Context, chain types.ChainID) ([]types.Token, error) {
	q := url.Values{}
	if chain > 0 {
		q.Set("chainId", fmt.Sprint(chain))
	}
	var out struct {
		Tokens []types.Token `json:"tokens"`
	}
	if err := c.get(ctx, "/api/tokens", q, &out); err != nil {
		return nil, fmt.Errorf("get token list: %w", err)
	}
	return out.Tokens, nil
}

// GetToken fetches metadata for a single token.
func (c *Client) GetToken(ctx context.Context, chain types.ChainID, address string) (*types.Token, error) {
	q := url.Values{
		"chainId": {fmt.Sprint(chain)},
		"address": {address},
	}
	var token types.Token
	if err := c.get(ctx, "/api/token", q, &token); err != nil {
		return nil, fmt.Errorf("get token %s: %w", address, err)
	}
	return &token, nil
}

// FindToken searches the supported token list by symbol, exact match first.
func (c *Client) FindToken(ctx context.Context, chain types.ChainID, symbol string) (*types.Token, error) {
	tokens, err := c.GetTokenList(ctx, chain)
	if err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(symbol)
	for _, t := range tokens {
		if strings.ToUpper(t.Symbol) == symbol {
			return &t, nil
		}
	}
	for _, t := range tokens {
		if strings.Contains(strings.ToUpper(t.Symbol), symbol) {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("token '%s' not found", symbol)
}

// GeoEligibility describes which onramp vendors are available for the
// caller's region.
type GeoEligibility struct {
	Country         string   `json:"country"`
	OnrampEligible  bool     `json:"onrampEligible"`
	EligibleVendors []string `json:"eligibleVendors"`
}

// GetGeoEligibility checks onramp availability for the caller's region.
func (c *Client) GetGeoEligibility(ctx context.Context) (*GeoEligibility, error) {
	var out GeoEligibility
	if err := c.get(ctx, "/api/onramp/geo", nil, &out); err != nil {
		return nil, fmt.Errorf("get geo eligibility: %w", err)
	}
	return &out, nil
}
