package domain

import "github.com/shopspring/decimal"

var (
	TaxRate               = decimal.RequireFromString("0.08")
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShippingCost      = decimal.NewFromInt(10)
)

type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}

// ComputeTotals derives the order money fields from captured line prices.
// Tax and the shipping threshold use the unrounded subtotal; every output is
// rounded to cents and Total is the sum of the rounded parts.
func ComputeTotals(lines []CartLine) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}

	shipping := FlatShippingCost
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(TaxRate).Round(2)
	rounded := subtotal.Round(2)

	return Totals{
		Subtotal:     rounded,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        rounded.Add(shipping).Add(tax),
	}
}
