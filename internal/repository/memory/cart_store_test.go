package memory

import (
	"context"
	"testing"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartStore_GetCart_NotFound(t *testing.T) {
	store := NewCartStore()

	cart, err := store.GetCart(context.Background(), "nobody")

	assert.ErrorIs(t, err, repository.ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestCartStore_SaveCart_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore()

	cart := domain.NewCart("user-1")
	require.NoError(t, store.SaveCart(ctx, cart))
	assert.Equal(t, int64(1), cart.Version)

	// second insert of a fresh cart for the same owner loses
	assert.ErrorIs(t, store.SaveCart(ctx, domain.NewCart("user-1")), repository.ErrVersionConflict)

	a, err := store.GetCart(ctx, "user-1")
	require.NoError(t, err)
	b, err := store.GetCart(ctx, "user-1")
	require.NoError(t, err)

	a.Lines = append(a.Lines, domain.CartLine{LineID: "l1", ProductID: "p1", Quantity: 1})
	require.NoError(t, store.SaveCart(ctx, a))

	b.Lines = append(b.Lines, domain.CartLine{LineID: "l2", ProductID: "p2", Quantity: 1})
	assert.ErrorIs(t, store.SaveCart(ctx, b), repository.ErrVersionConflict)

	stored, err := store.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, "p1", stored.Lines[0].ProductID)
}

func TestCartStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore()

	cart := domain.NewCart("user-1")
	cart.Lines = append(cart.Lines, domain.CartLine{LineID: "l1", ProductID: "p1", Quantity: 1})
	require.NoError(t, store.SaveCart(ctx, cart))

	cart.Lines[0].Quantity = 50
	got, err := store.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Lines[0].Quantity)
}
