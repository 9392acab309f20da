package memory

import (
	"context"
	"sort"
	"sync"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
)

// OrderStore implements repository.OrderRepository in process memory.
type OrderStore struct {
	mu       sync.RWMutex
	nextID   uint64
	orders   map[uint64]*domain.Order
	byNumber map[string]uint64
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:   make(map[uint64]*domain.Order),
		byNumber: make(map[string]uint64),
	}
}

var _ repository.OrderRepository = (*OrderStore)(nil)

func (s *OrderStore) Save(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byNumber[order.OrderNumber]; taken {
		return repository.ErrDuplicateOrderNumber
	}

	s.nextID++
	order.ID = s.nextID
	s.orders[order.ID] = copyOrder(order)
	s.byNumber[order.OrderNumber] = order.ID
	return nil
}

func (s *OrderStore) FindByID(_ context.Context, id uint64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (s *OrderStore) FindByOwner(_ context.Context, ownerID string) ([]domain.Order, error) {
	return s.filter(func(o *domain.Order) bool { return o.OwnerID == ownerID }), nil
}

func (s *OrderStore) FindAll(_ context.Context) ([]domain.Order, error) {
	return s.filter(func(*domain.Order) bool { return true }), nil
}

func (s *OrderStore) UpdateState(_ context.Context, order *domain.Order, from domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[order.ID]
	if !ok || stored.Status != from {
		return repository.ErrOrderConflict
	}

	stored.Status = order.Status
	stored.IsPaid = order.IsPaid
	stored.PaidAt = order.PaidAt
	stored.PaymentResult = order.PaymentResult
	stored.IsDelivered = order.IsDelivered
	stored.DeliveredAt = order.DeliveredAt
	stored.TrackingNumber = order.TrackingNumber
	stored.UpdatedAt = order.UpdatedAt
	return nil
}

func (s *OrderStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o, ok := s.orders[id]; ok {
		delete(s.byNumber, o.OrderNumber)
		delete(s.orders, id)
	}
	return nil
}

// filter returns matching orders newest first.
func (s *OrderStore) filter(keep func(*domain.Order) bool) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, 0)
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, *copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func copyOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Lines = append([]domain.OrderLine(nil), o.Lines...)
	return &cp
}
