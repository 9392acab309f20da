package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog(products ...*Product) map[string]*Product {
	m := make(map[string]*Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}

func TestCart_Merge_IntoEmptyCart(t *testing.T) {
	inactive := product("p3", "7.00", 10)
	inactive.IsActive = false
	products := catalog(product("p1", "10.00", 10), product("p2", "4.00", 2), inactive)

	cart := NewCart("user-1")
	dropped := cart.Merge([]GuestLine{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p2", Quantity: 5},
		{ProductID: "p3", Quantity: 1},
		{ProductID: "missing", Quantity: 1},
	}, products)

	assert.Equal(t, 2, dropped)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, "p1", cart.Lines[0].ProductID)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, "p2", cart.Lines[1].ProductID)
	assert.Equal(t, 2, cart.Lines[1].Quantity, "capped at stock")
	assert.Equal(t, LineIDFor("user-1", "p1"), cart.Lines[0].LineID)
}

func TestCart_Merge_SumsExistingLines(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.AddLine(product("p1", "10.00", 10), 4))

	cart.Merge([]GuestLine{{ProductID: "p1", Quantity: 3}}, catalog(product("p1", "11.00", 10)))

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 7, cart.Lines[0].Quantity)
	assert.Equal(t, "11.00", cart.Lines[0].UnitPrice.StringFixed(2))
}

func TestCart_Merge_CapsSumAtStock(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.AddLine(product("p1", "10.00", 10), 4))

	dropped := cart.Merge([]GuestLine{{ProductID: "p1", Quantity: 30}}, catalog(product("p1", "10.00", 6)))

	assert.Equal(t, 0, dropped)
	assert.Equal(t, 6, cart.Lines[0].Quantity)
}

func TestCart_Merge_NeverShrinksServerLine(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.AddLine(product("p1", "10.00", 10), 5))

	cart.Merge([]GuestLine{{ProductID: "p1", Quantity: 1}}, catalog(product("p1", "10.00", 2)))

	assert.Equal(t, 5, cart.Lines[0].Quantity)
}

func TestCart_Merge_DropsOutOfStockAndBadQuantity(t *testing.T) {
	cart := NewCart("user-1")
	dropped := cart.Merge([]GuestLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 0},
	}, catalog(product("p1", "10.00", 0), product("p2", "1.00", 5)))

	assert.Equal(t, 2, dropped)
	assert.True(t, cart.IsEmpty())
}

func TestCart_Merge_DuplicateGuestLines(t *testing.T) {
	cart := NewCart("user-1")
	cart.Merge([]GuestLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p1", Quantity: 2},
	}, catalog(product("p1", "10.00", 10)))

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 4, cart.Lines[0].Quantity)
}

func TestCart_Merge_HugeGuestQuantity(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.AddLine(product("p1", "10.00", 10), 4))

	dropped := cart.Merge([]GuestLine{{ProductID: "p1", Quantity: math.MaxInt}}, catalog(product("p1", "10.00", 10)))

	assert.Equal(t, 0, dropped)
	assert.Equal(t, 10, cart.Lines[0].Quantity)
}
