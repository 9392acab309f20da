package domain

import "github.com/pkg/errors"

// Error kinds surfaced by cart and order operations. All of them are
// recoverable by the caller: adjust the quantity, pick another product or
// retry.
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrOutOfStock         = errors.New("insufficient stock")
	ErrLineNotFound       = errors.New("cart line not found")
	ErrUnavailableProduct = errors.New("some products are no longer available")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
)
