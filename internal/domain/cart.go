package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// cartLineNamespace seeds line ids. A cart holds at most one line per
// product, so the id is derived from (owner, product) and the same sequence
// of operations always produces the same lines.
var cartLineNamespace = uuid.MustParse("6f1c9a3e-2d4b-4f8a-9c1e-5b7d2a0e8f41")

type CartLine struct {
	LineID    string          `json:"lineId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Total is the line amount at the captured unit price.
func (l CartLine) Total() decimal.Decimal {
	return LineTotal(l.UnitPrice, l.Quantity)
}

// Cart is the server-side cart of one owner. Version is bumped by the
// repository on every successful save and is used for compare-and-swap.
type Cart struct {
	OwnerID        string     `json:"ownerId"`
	Lines          []CartLine `json:"lines"`
	Version        int64      `json:"version"`
	LastMergeToken string     `json:"lastMergeToken,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func NewCart(ownerID string) *Cart {
	now := time.Now()
	return &Cart{
		OwnerID:   ownerID,
		Lines:     []CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LineIDFor returns the id a line for productID has in the cart of ownerID.
func LineIDFor(ownerID, productID string) string {
	return uuid.NewSHA1(cartLineNamespace, []byte(ownerID+"/"+productID)).String()
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line looks a line up by its id.
func (c *Cart) Line(lineID string) (CartLine, bool) {
	if i := c.indexOfLine(lineID); i >= 0 {
		return c.Lines[i], true
	}
	return CartLine{}, false
}

// AddLine adds quantity units of p. An existing line for the product is
// incremented and re-priced; otherwise a new line is appended. The cumulative
// quantity may not exceed the product's current stock.
func (c *Cart) AddLine(p *Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if !p.Available() {
		return ErrProductNotFound
	}

	i := c.indexOfProduct(p.ID)
	existing := 0
	if i >= 0 {
		existing = c.Lines[i].Quantity
	}
	// compared as headroom so a huge quantity cannot wrap the sum
	if quantity > p.Stock-existing {
		return ErrOutOfStock
	}

	price := CapturePrice(p)
	if i >= 0 {
		c.Lines[i].Quantity = existing + quantity
		c.Lines[i].UnitPrice = price
		return nil
	}

	c.Lines = append(c.Lines, CartLine{
		LineID:    LineIDFor(c.OwnerID, p.ID),
		ProductID: p.ID,
		Quantity:  quantity,
		UnitPrice: price,
	})
	return nil
}

// UpdateLineQuantity sets the quantity of an existing line without touching
// its captured price. A quantity of zero or less removes the line. p is the
// current snapshot of the line's product and is only consulted for stock.
func (c *Cart) UpdateLineQuantity(lineID string, quantity int, p *Product) error {
	i := c.indexOfLine(lineID)
	if i < 0 {
		return ErrLineNotFound
	}
	if quantity <= 0 {
		c.removeAt(i)
		return nil
	}
	if p == nil {
		return ErrProductNotFound
	}
	if quantity > p.Stock {
		return ErrOutOfStock
	}

	c.Lines[i].Quantity = quantity
	return nil
}

// RemoveLine drops the line if present. Removing an absent line is a no-op.
func (c *Cart) RemoveLine(lineID string) {
	if i := c.indexOfLine(lineID); i >= 0 {
		c.removeAt(i)
	}
}

// Clear empties the cart. The cart itself keeps existing.
func (c *Cart) Clear() {
	c.Lines = []CartLine{}
}

// Clone returns a deep copy so a failed mutation never leaks into the caller's value.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Lines = make([]CartLine, len(c.Lines))
	copy(cp.Lines, c.Lines)
	return &cp
}

func (c *Cart) indexOfLine(lineID string) int {
	for i, l := range c.Lines {
		if l.LineID == lineID {
			return i
		}
	}
	return -1
}

func (c *Cart) indexOfProduct(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}
