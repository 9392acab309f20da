package memory

import (
	"context"
	"sync"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
)

// CartStore implements repository.CartRepository in process memory.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]*domain.Cart)}
}

var _ repository.CartRepository = (*CartStore)(nil)

func (s *CartStore) GetCart(_ context.Context, ownerID string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[ownerID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cart.Clone(), nil
}

func (s *CartStore) SaveCart(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.carts[cart.OwnerID]
	switch {
	case cart.Version == 0 && exists:
		return repository.ErrVersionConflict
	case cart.Version != 0 && (!exists || stored.Version != cart.Version):
		return repository.ErrVersionConflict
	}

	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	cart.Version++
	s.carts[cart.OwnerID] = cart.Clone()
	return nil
}
