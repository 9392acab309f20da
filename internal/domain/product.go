package domain

import "github.com/shopspring/decimal"

// Product is the read-only snapshot of a catalog entry taken at the moment a
// cart or order operation runs. Nothing in this service mutates it.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	IsActive bool            `json:"isActive"`
}

// Available reports whether p resolved and is still offered for sale.
func (p *Product) Available() bool {
	return p != nil && p.IsActive
}
