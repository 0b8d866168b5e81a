package api

import (
	"encoding/json"
	"fmt"
)

// Backend error codes surfaced in APIError.Code.
const (
	ErrCodeInvalidRequest    = "invalid_request"
	ErrCodeQuoteUnavailable  = "quote_unavailable"
	ErrCodeOrderNotFound     = "order_not_found"
	ErrCodeUnsupportedRegion = "unsupported_region"
	ErrCodeKYCRequired       = "kyc_required"
)

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.StatusCode)
}

// decodeAPIError extracts the backend's error envelope, falling back to the
// raw body when it is not JSON.
func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	if len(body) == 0 {
		return apiErr
	}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		if apiErr.Message == "" {
			apiErr.Message = string(body)
		}
	}
	return apiErr
}
