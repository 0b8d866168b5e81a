package quote

import "github.com/shopspring/decimal"

// suppressBelow hides sub-1% impact from display.
var suppressBelow = decimal.NewFromInt(1)

// PriceImpact computes the percentage lost between the USD value sent and the
// USD value received: (srcUsd - dstUsd) / srcUsd * 100. Invalid inputs and
// favorable impact both clamp to zero. This never affects the quoted amounts.
func PriceImpact(srcUSD, dstUSD decimal.Decimal) decimal.Decimal {
	if srcUSD.Sign() <= 0 || dstUSD.Sign() < 0 {
		return decimal.Zero
	}
	impact := srcUSD.Sub(dstUSD).Div(srcUSD).Mul(decimal.NewFromInt(100))
	if impact.Sign() <= 0 {
		return decimal.Zero
	}
	return impact
}

// DisplayPriceImpact applies the display policy on top of PriceImpact:
// magnitudes under 1% are shown as zero. Presentation only.
func DisplayPriceImpact(srcUSD, dstUSD decimal.Decimal) decimal.Decimal {
	impact := PriceImpact(srcUSD, dstUSD)
	if impact.LessThan(suppressBelow) {
		return decimal.Zero
	}
	return impact
}
