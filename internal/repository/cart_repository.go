package repository

import (
	"context"

	"storefront-service/internal/domain"

	"github.com/pkg/errors"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	// ErrVersionConflict means another writer saved the cart since it was read.
	ErrVersionConflict = errors.New("cart version conflict")
)

// CartRepository stores one cart document per owner.
//
// SaveCart is a compare-and-swap on cart.Version: a cart with Version 0 is
// inserted, any other version replaces the stored document only if the stored
// version still matches. On success cart.Version is incremented in place.
type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (*domain.Cart, error)
	SaveCart(ctx context.Context, cart *domain.Cart) error
}
