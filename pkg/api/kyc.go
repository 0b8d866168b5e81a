package api

import (
	"context"
	"fmt"
	"net/url"
)

// KYCStatus is the verification state of a wallet address.
type KYCStatus string

const (
	KYCStatusNone     KYCStatus = "none"
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusDeclined KYCStatus = "declined"
)

// KYCInquiry is a hosted identity-verification session.
type KYCInquiry struct {
	InquiryID  string    `json:"inquiryId"`
	Status     KYCStatus `json:"status"`
	SessionURL string    `json:"sessionUrl,omitempty"`
}

// GetKYCStatus returns the verification state for an address. Requires a
// configured Signer.
func (c *Client) GetKYCStatus(ctx context.Context, address string) (KYCStatus, error) {
	q := url.Values{"address": {address}}
	var out struct {
		Status KYCStatus `json:"status"`
	}
	if err := c.get(ctx, "/api/kyc/status", q, &out); err != nil {
		return KYCStatusNone, fmt.Errorf("get kyc status: %w", err)
	}
	return out.Status, nil
}

// CreateKYCInquiry opens a verification session for an address.
func (c *Client) CreateKYCInquiry(ctx context.Context, address string) (*KYCInquiry, error) {
	body := map[string]string{"address": address}
	var out KYCInquiry
	if err := c.post(ctx, "/api/kyc/inquiry", body, &out); err != nil {
		return nil, fmt.Errorf("create kyc inquiry: %w", err)
	}
	return &out, nil
}

// VerifyKYCInquiry reports a completed hosted verification back to the
// backend and returns the resulting status.
func (c *Client) VerifyKYCInquiry(ctx context.Context, inquiryID string) (KYCStatus, error) {
	body := map[string]string{"inquiryId": inquiryID}
	var out struct {
		Status KYCStatus `json:"status"`
	}
	if err := c.post(ctx, "/api/kyc/verify", body, &out); err != nil {
		return KYCStatusNone, fmt.Errorf("verify kyc inquiry: %w", err)
	}
	return out.Status, nil
}
