package repository

import (
	"context"

	"storefront-service/internal/domain"

	"github.com/pkg/errors"
)

var (
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	// ErrOrderConflict means the order left the expected status before the write landed.
	ErrOrderConflict = errors.New("order was modified concurrently")
)

// OrderRepository stores orders together with their lines. FindByID returns
// (nil, nil) when the order does not exist.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	// UpdateState persists status, payment and delivery fields only if the
	// stored status still equals from.
	UpdateState(ctx context.Context, order *domain.Order, from domain.OrderStatus) error
	Delete(ctx context.Context, id uint64) error
}
