// Package catalog holds the canonical server-side plan price table and the
// currency policy for checkout. Plan prices are never trusted from client
// input.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Canonical plan prices in USD.
var planPricesUSD = map[string]decimal.Decimal{
	"starter":     decimal.NewFromInt(299),
	"performance": decimal.NewFromInt(599),
	"premium":     decimal.NewFromInt(2499),
	"automation":  decimal.NewFromInt(999),
}

var allowedCurrencies = map[string]struct{}{
	"USD": {},
	"INR": {},
	"GBP": {},
	"AUD": {},
	"CAD": {},
	"AED": {},
	"EUR": {},
	"JPY": {},
	"SGD": {},
}

// PlanPriceUSD returns the canonical USD price for a plan id.
func PlanPriceUSD(planID string) (decimal.Decimal, bool) {
	price, ok := planPricesUSD[planID]
	return price, ok
}

// NormalizeCurrency upper-cases the requested currency and falls back to USD
// for anything outside the allow-list. Unknown currencies are a policy
// fallback, not an error.
func NormalizeCurrency(requested string) string {
	cur := strings.ToUpper(strings.TrimSpace(requested))
	if cur == "" {
		return "USD"
	}
	if _, ok := allowedCurrencies[cur]; !ok {
		return "USD"
	}
	return cur
}

// PaypalSettlementCurrency maps a checkout currency to the currency PayPal
// settles in. PayPal does not settle INR in most regions, so INR orders are
// forced to USD while the requested currency is kept for display.
func PaypalSettlementCurrency(currency string) string {
	if currency == "INR" {
		return "USD"
	}
	return currency
}

// ConvertUSD multiplies a USD price by a rate and rounds to 2 fractional
// digits.
func ConvertUSD(priceUSD decimal.Decimal, rate float64) decimal.Decimal {
	return priceUSD.Mul(decimal.NewFromFloat(rate)).Round(2)
}

// FormatAmount renders an amount the way payment providers expect it: a
// decimal string with exactly 2 fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
