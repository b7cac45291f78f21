package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPlanPriceUSD(t *testing.T) {
	price, ok := PlanPriceUSD("starter")
	if !ok {
		t.Fatalf("expected starter plan to exist")
	}
	if !price.Equal(decimal.NewFromInt(299)) {
		t.Fatalf("starter price = %s, want 299", price)
	}

	if _, ok := PlanPriceUSD("no-such-plan"); ok {
		t.Fatalf("expected unknown plan to be rejected")
	}
}

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "usd", want: "USD"},
		{in: "INR", want: "INR"},
		{in: " gbp ", want: "GBP"},
		{in: "XYZ", want: "USD"},
		{in: "", want: "USD"},
	}

	for _, tt := range tests {
		if got := NormalizeCurrency(tt.in); got != tt.want {
			t.Fatalf("NormalizeCurrency(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPaypalSettlementCurrency(t *testing.T) {
	if got := PaypalSettlementCurrency("INR"); got != "USD" {
		t.Fatalf("INR settlement = %q, want USD", got)
	}
	if got := PaypalSettlementCurrency("EUR"); got != "EUR" {
		t.Fatalf("EUR settlement = %q, want EUR", got)
	}
}

func TestConvertUSD(t *testing.T) {
	price, _ := PlanPriceUSD("starter")

	got := FormatAmount(ConvertUSD(price, 83.0))
	if got != "24817.00" {
		t.Fatalf("299 USD at 83.0 = %s, want 24817.00", got)
	}

	got = FormatAmount(ConvertUSD(decimal.NewFromInt(599), 0.915))
	if got != "548.09" {
		t.Fatalf("599 USD at 0.915 = %s, want 548.09", got)
	}
}
