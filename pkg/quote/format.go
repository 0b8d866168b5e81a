package quote

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DisplayFractionDigits is the display precision for formatted amounts.
const DisplayFractionDigits = 6

// ParseUnits converts a human-readable amount to an integer string in the
// token's smallest unit. Fractions below the token's precision are rejected.
func ParseUnits(amount string, decimals int32) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("amount must not be negative")
	}
	shifted := d.Shift(decimals)
	if !shifted.IsInteger() {
		return "", fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}
	return shifted.String(), nil
}

// FormatUnits converts an integer smallest-unit string to a human-readable
// decimal.
func FormatUnits(amount string, decimals int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if !d.IsInteger() {
		return decimal.Zero, fmt.Errorf("amount %q is not in smallest units", amount)
	}
	return d.Shift(-decimals), nil
}

// DisplayAmount formats a smallest-unit amount for the UI, rounded to
// DisplayFractionDigits fractional digits with trailing zeros trimmed.
func DisplayAmount(amount string, decimals int32) (string, error) {
	d, err := FormatUnits(amount, decimals)
	if err != nil {
		return "", err
	}
	places := DisplayFractionDigits
	if int(decimals) < places {
		places = int(decimals)
	}
	return d.Round(int32(places)).String(), nil
}
