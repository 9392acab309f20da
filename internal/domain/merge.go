package domain

// GuestLine is one entry of the cart a visitor built before signing in.
// Guest-held prices are never trusted, so only product and quantity travel.
type GuestLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Merge folds the guest lines into c. products holds the current snapshot of
// every guest product; a missing entry means the product no longer resolves.
//
// A guest line for a product already in the cart adds its quantity to that
// line, capped at current stock, and re-prices it. The guest excess is dropped
// silently, and the server line is never reduced below what it already held.
// Any other guest line is appended if the product is active and in stock,
// capped at stock. Lines that cannot be honoured are skipped.
//
// Merge returns how many guest lines were dropped entirely.
func (c *Cart) Merge(guest []GuestLine, products map[string]*Product) int {
	dropped := 0
	for _, g := range guest {
		p := products[g.ProductID]
		if g.Quantity < 1 || !p.Available() {
			dropped++
			continue
		}

		if i := c.indexOfProduct(p.ID); i >= 0 {
			existing := c.Lines[i].Quantity
			qty := existing
			switch {
			case existing >= p.Stock:
			case g.Quantity > p.Stock-existing:
				qty = p.Stock
			default:
				qty = existing + g.Quantity
			}
			c.Lines[i].Quantity = qty
			c.Lines[i].UnitPrice = CapturePrice(p)
			continue
		}

		qty := min(g.Quantity, p.Stock)
		if qty < 1 {
			dropped++
			continue
		}
		c.Lines = append(c.Lines, CartLine{
			LineID:    LineIDFor(c.OwnerID, p.ID),
			ProductID: p.ID,
			Quantity:  qty,
			UnitPrice: CapturePrice(p),
		})
	}
	return dropped
}
