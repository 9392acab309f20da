package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, price string, stock int) *Product {
	return &Product{
		ID:       id,
		Name:     "Product " + id,
		Image:    "https://img.example.com/" + id + ".jpg",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
}

func TestCart_AddLine(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(c *Cart)
		product       *Product
		quantity      int
		expectedError error
		expectedQty   int
		expectedLines int
	}{
		{
			name:          "new line",
			product:       product("p1", "19.99", 5),
			quantity:      2,
			expectedQty:   2,
			expectedLines: 1,
		},
		{
			name: "existing line is incremented",
			setup: func(c *Cart) {
				require.NoError(t, c.AddLine(product("p1", "19.99", 5), 2))
			},
			product:       product("p1", "19.99", 5),
			quantity:      3,
			expectedQty:   5,
			expectedLines: 1,
		},
		{
			name: "cumulative quantity over stock",
			setup: func(c *Cart) {
				require.NoError(t, c.AddLine(product("p1", "19.99", 5), 4))
			},
			product:       product("p1", "19.99", 5),
			quantity:      2,
			expectedError: ErrOutOfStock,
			expectedQty:   4,
			expectedLines: 1,
		},
		{
			name:          "zero quantity",
			product:       product("p1", "19.99", 5),
			quantity:      0,
			expectedError: ErrInvalidQuantity,
		},
		{
			name:          "inactive product",
			product:       &Product{ID: "p1", Price: decimal.NewFromInt(10), Stock: 5},
			quantity:      1,
			expectedError: ErrProductNotFound,
		},
		{
			name:          "unresolved product",
			quantity:      1,
			expectedError: ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := NewCart("user-1")
			if tt.setup != nil {
				tt.setup(cart)
			}

			err := cart.AddLine(tt.product, tt.quantity)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, cart.Lines, tt.expectedLines)
			if tt.expectedLines > 0 {
				assert.Equal(t, tt.expectedQty, cart.Lines[0].Quantity)
			}
		})
	}
}

func TestCart_AddLine_NeverExceedsStock(t *testing.T) {
	p := product("p1", "5.00", 7)
	cart := NewCart("user-1")

	var err error
	added := 0
	for err == nil {
		err = cart.AddLine(p, 2)
		if err == nil {
			added += 2
		}
	}

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 6, added)
	assert.Equal(t, 6, cart.Lines[0].Quantity)
	assert.LessOrEqual(t, cart.Lines[0].Quantity, p.Stock)
}

func TestCart_AddLine_HugeQuantityOnExistingLine(t *testing.T) {
	p := product("p1", "10.00", 5)
	cart := NewCart("user-1")
	require.NoError(t, cart.AddLine(p, 1))

	err := cart.AddLine(p, math.MaxInt)

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
	assert.Equal(t, "10.00", cart.Subtotal().StringFixed(2))
}

func TestCart_AddLine_RefreshesPrice(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.AddLine(product("p1", "10.00", 10), 1))
	require.NoError(t, cart.AddLine(product("p1", "12.50", 10), 1))

	assert.Equal(t, "12.50", cart.Lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "25.00", cart.Subtotal().StringFixed(2))
	assert.Equal(t, 2, cart.TotalItems())
}

func TestCart_UpdateLineQuantity(t *testing.T) {
	newCart := func() *Cart {
		c := NewCart("user-1")
		require.NoError(t, c.AddLine(product("p1", "10.00", 10), 2))
		return c
	}
	lineID := LineIDFor("user-1", "p1")

	t.Run("keeps captured price", func(t *testing.T) {
		cart := newCart()
		err := cart.UpdateLineQuantity(lineID, 4, product("p1", "99.00", 10))
		require.NoError(t, err)
		assert.Equal(t, 4, cart.Lines[0].Quantity)
		assert.Equal(t, "10.00", cart.Lines[0].UnitPrice.StringFixed(2))
	})

	t.Run("over stock", func(t *testing.T) {
		cart := newCart()
		err := cart.UpdateLineQuantity(lineID, 11, product("p1", "10.00", 10))
		assert.ErrorIs(t, err, ErrOutOfStock)
		assert.Equal(t, 2, cart.Lines[0].Quantity)
	})

	t.Run("zero removes the line", func(t *testing.T) {
		cart := newCart()
		err := cart.UpdateLineQuantity(lineID, 0, nil)
		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())
	})

	t.Run("unknown line", func(t *testing.T) {
		cart := newCart()
		err := cart.UpdateLineQuantity("missing", 1, product("p1", "10.00", 10))
		assert.ErrorIs(t, err, ErrLineNotFound)
	})

	t.Run("product gone", func(t *testing.T) {
		cart := newCart()
		err := cart.UpdateLineQuantity(lineID, 3, nil)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestCart_RemoveAndClearAreIdempotent(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.AddLine(product("p1", "10.00", 10), 1))
	require.NoError(t, cart.AddLine(product("p2", "3.00", 10), 1))
	lineID := LineIDFor("user-1", "p1")

	cart.RemoveLine(lineID)
	once := cart.Clone()
	cart.RemoveLine(lineID)
	assert.Equal(t, once.Lines, cart.Lines)

	cart.Clear()
	cart.Clear()
	assert.Empty(t, cart.Lines)
	assert.Equal(t, 0, cart.TotalItems())
}

func TestCart_OperationsAreDeterministic(t *testing.T) {
	apply := func(c *Cart) {
		require.NoError(t, c.AddLine(product("p1", "10.00", 10), 2))
		require.NoError(t, c.AddLine(product("p2", "4.00", 3), 1))
		require.NoError(t, c.UpdateLineQuantity(LineIDFor(c.OwnerID, "p2"), 3, product("p2", "4.00", 3)))
		c.RemoveLine(LineIDFor(c.OwnerID, "p1"))
	}

	cart := NewCart("user-1")
	apply(cart)
	first := cart.Clone()

	cart.Clear()
	apply(cart)

	assert.Equal(t, first.Lines, cart.Lines)
}

func TestCart_CloneIsDeep(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.AddLine(product("p1", "10.00", 10), 1))

	cp := cart.Clone()
	cp.Lines[0].Quantity = 9

	assert.Equal(t, 1, cart.Lines[0].Quantity)
}
