package services

import (
	"context"
	"sync"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/infra"
	rabbit "storefront-service/internal/infra/rabbitmq"
	"storefront-service/internal/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const maxOrderNumberAttempts = 5

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrCartChanged     = errors.New("cart changed while the order was being placed")
	ErrInvalidCheckout = errors.New("invalid checkout details")
)

// Actor is the authenticated caller as supplied by the identity layer.
type Actor struct {
	UserID string
	Admin  bool
}

func (a Actor) canAccess(o *domain.Order) bool {
	return a.Admin || o.OwnerID == a.UserID
}

type OrderService struct {
	repo       repository.OrderRepository
	carts      *CartService
	prodClient infra.ProductClientInterface
	publisher  rabbit.PublisherInterface
	logger     *zap.Logger
	now        func() time.Time
	inflight   sync.WaitGroup
}

func NewOrderService(r repository.OrderRepository, carts *CartService, p infra.ProductClientInterface, pub rabbit.PublisherInterface, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:       r,
		carts:      carts,
		prodClient: p,
		publisher:  pub,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateOrder turns the owner's cart into a pending order and empties the
// cart. The cart is cleared against the exact version the order was built
// from; if that fails the order is removed again, so either both happen or
// neither does.
func (u *OrderService) CreateOrder(ctx context.Context, in domain.Checkout) (*domain.Order, error) {
	if !in.PaymentMethod.Valid() {
		return nil, errors.Wrapf(ErrInvalidCheckout, "payment method %q", in.PaymentMethod)
	}
	if !in.ShippingAddress.Complete() {
		return nil, errors.Wrap(ErrInvalidCheckout, "shipping address is incomplete")
	}

	cart, err := u.carts.load(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	products := make(map[string]*domain.Product, len(cart.Lines))
	for _, l := range cart.Lines {
		p, err := u.prodClient.GetProductById(ctx, l.ProductID)
		if err != nil {
			return nil, errors.Wrapf(err, "look up product %s", l.ProductID)
		}
		if p != nil {
			products[l.ProductID] = p
		}
	}

	now := u.now()
	order, err := domain.NewOrderFromCart(cart, products, in, now)
	if err != nil {
		return nil, err
	}

	if err := u.save(ctx, order, now); err != nil {
		return nil, err
	}

	cart.Clear()
	if err := u.carts.repo.SaveCart(ctx, cart); err != nil {
		u.compensate(ctx, order)
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrCartChanged
		}
		return nil, errors.Wrap(err, "clear cart")
	}
	u.carts.remember(cart)

	u.logger.Info("order created",
		zap.Uint64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("owner_id", order.OwnerID),
		zap.String("total", order.Total.StringFixed(2)))

	u.publish(domain.EventOrderCreated, domain.NewOrderCreatedEvent(order))
	return order, nil
}

// save persists the order, drawing a fresh order number on collision.
func (u *OrderService) save(ctx context.Context, order *domain.Order, now time.Time) error {
	var err error
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = domain.GenerateOrderNumber(now)
		err = u.repo.Save(ctx, order)
		if !errors.Is(err, repository.ErrDuplicateOrderNumber) {
			break
		}
		u.logger.Warn("order number collision", zap.String("order_number", order.OrderNumber), zap.Int("attempt", attempt))
	}
	if err != nil {
		return errors.Wrap(err, "save order")
	}
	return nil
}

func (u *OrderService) compensate(ctx context.Context, order *domain.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := u.repo.Delete(ctx, order.ID); err != nil {
		u.logger.Error("compensating order delete failed",
			zap.Uint64("order_id", order.ID),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}
}

func (u *OrderService) GetOrderById(ctx context.Context, actor Actor, id uint64) (*domain.Order, error) {
	o, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if !actor.canAccess(o) {
		return nil, ErrNotAuthorized
	}
	return o, nil
}

func (u *OrderService) ListOrders(ctx context.Context, ownerID string) ([]domain.Order, error) {
	return u.repo.FindByOwner(ctx, ownerID)
}

func (u *OrderService) ListAllOrders(ctx context.Context, actor Actor) ([]domain.Order, error) {
	if !actor.Admin {
		return nil, ErrNotAuthorized
	}
	return u.repo.FindAll(ctx)
}

func (u *OrderService) CancelOrder(ctx context.Context, actor Actor, id uint64) (*domain.Order, error) {
	return u.change(ctx, actor, id, func(o *domain.Order, now time.Time) error {
		return o.Cancel(now)
	})
}

// UpdateStatus is the admin path through the lifecycle. A non-empty
// trackingNumber is stored alongside the new status.
func (u *OrderService) UpdateStatus(ctx context.Context, actor Actor, id uint64, status domain.OrderStatus, trackingNumber string) (*domain.Order, error) {
	if !actor.Admin {
		return nil, ErrNotAuthorized
	}
	return u.change(ctx, actor, id, func(o *domain.Order, now time.Time) error {
		if err := o.TransitionTo(status, now); err != nil {
			return err
		}
		if trackingNumber != "" {
			o.TrackingNumber = trackingNumber
		}
		return nil
	})
}

// MarkPaid records the payment once; paying an already paid order returns it
// unchanged and publishes nothing.
func (u *OrderService) MarkPaid(ctx context.Context, actor Actor, id uint64, result domain.PaymentResult) (*domain.Order, error) {
	paid := false
	o, err := u.change(ctx, actor, id, func(o *domain.Order, now time.Time) error {
		if o.IsPaid {
			return errUnchanged
		}
		if err := o.MarkPaid(result, now); err != nil {
			return err
		}
		paid = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if paid {
		u.publish(domain.EventOrderPaid, domain.NewOrderPaidEvent(o))
	}
	return o, nil
}

// change loads the order, applies fn and writes it back only if the stored
// status is still the one fn started from. A status change is announced.
func (u *OrderService) change(ctx context.Context, actor Actor, id uint64, fn func(o *domain.Order, now time.Time) error) (*domain.Order, error) {
	o, err := u.GetOrderById(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	from := o.Status
	if err := fn(o, u.now()); err != nil {
		if errors.Is(err, errUnchanged) {
			return o, nil
		}
		return nil, err
	}

	if err := u.repo.UpdateState(ctx, o, from); err != nil {
		return nil, err
	}

	if o.Status == from {
		return o, nil
	}
	u.publish(domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		From:        from,
		To:          o.Status,
		IsPaid:      o.IsPaid,
		ChangedAt:   o.UpdatedAt,
	})
	return o, nil
}

// publish sends the event in the background; the state change is already
// durable, so a failed publish is only logged.
func (u *OrderService) publish(pattern string, evt any) {
	u.inflight.Add(1)
	go func() {
		defer u.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := u.publisher.Publish(ctx, pattern, evt); err != nil {
			u.logger.Error("publish event", zap.String("pattern", pattern), zap.Error(err))
		}
	}()
}

// Wait blocks until background publishes have finished.
func (u *OrderService) Wait() {
	u.inflight.Wait()
}
