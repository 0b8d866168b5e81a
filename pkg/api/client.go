// Package api implements a typed HTTP client for the AnySpend backend.
//
// The backend owns every order; this client only creates orders and reads
// them back. All mutating calls carry a client-generated idempotency key so
// an interrupted create can be retried safely.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the production AnySpend API endpoint.
const DefaultBaseURL = "https://mainnet.anyspend.com"

// DefaultHTTPClient is tuned for interactive client usage.
var DefaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// Client talks to the AnySpend backend REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	auth      *authCache
	log       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option { return func(c *Client) { c.userAgent = ua } }

// WithLogger plugs in a structured logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

// WithSigner enables wallet-signature authentication. The signature header is
// cached for ttl and re-signed on expiry.
func WithSigner(s Signer, ttl time.Duration) Option {
	return func(c *Client) { c.auth = newAuthCache(s, ttl) }
}

// NewClient constructs a new API client. base should be like
// "https://mainnet.anyspend.com"; empty selects DefaultBaseURL.
func NewClient(base string, opts ...Option) (*Client, error) {
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	c := &Client{
		baseURL:   u,
		http:      DefaultHTTPClient,
		userAgent: "anyspend-go/1.0",
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do executes one request against the backend and decodes the JSON response
// into out. Non-2xx responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, p string, q url.Values, body any, out any) error {
	u := *c.baseURL
	u.Path = path.Join(u.Path, p)
	u.RawQuery = q.Encode()

	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.auth != nil {
		header, err := c.auth.Header(ctx)
		if err != nil {
			return fmt.Errorf("sign request: %w", err)
		}
		req.Header.Set(signatureHeader, header)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", p).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, p, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", p).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, p string, q url.Values, out any) error {
	return c.do(ctx, http.MethodGet, p, q, nil, out)
}

func (c *Client) post(ctx context.Context, p string, body, out any) error {
	return c.do(ctx, http.MethodPost, p, nil, body, out)
}
