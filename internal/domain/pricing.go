package domain

import "github.com/shopspring/decimal"

// CapturePrice returns the unit price a cart line freezes for p. The caller
// must have resolved p already; a missing product is reported by the caller.
func CapturePrice(p *Product) decimal.Decimal {
	return p.Price
}

// LineTotal is unitPrice × quantity, unrounded.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
