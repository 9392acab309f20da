package infra

import (
	"context"

	"storefront-service/internal/domain"
)

// ProductClientInterface is the product lookup capability. A product that
// does not exist is reported as (nil, nil); errors mean the lookup itself failed.
type ProductClientInterface interface {
	GetProductById(ctx context.Context, id string) (*domain.Product, error)
}

var _ ProductClientInterface = (*ProductClient)(nil)
