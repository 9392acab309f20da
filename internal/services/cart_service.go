package services

import (
	"context"
	"time"

	"storefront-service/internal/cache"
	"storefront-service/internal/domain"
	"storefront-service/internal/infra"
	"storefront-service/internal/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultCartAttempts = 5

var ErrConcurrentUpdate = errors.New("cart is being modified concurrently, please retry")

// errUnchanged short-circuits a mutation that has nothing to write.
var errUnchanged = errors.New("cart unchanged")

// MergeRequest is the guest cart handed over at sign-in. Token identifies the
// login transition; a token already applied to the cart is not applied again.
type MergeRequest struct {
	Token string
	Lines []domain.GuestLine
}

// CartService owns every read-modify-write of a cart. Writes are optimistic:
// the cart is re-read and the operation re-applied when the stored version
// moved underneath it.
type CartService struct {
	repo        repository.CartRepository
	cache       cache.CartCache
	products    infra.ProductClientInterface
	logger      *zap.Logger
	sfg         singleflight.Group
	maxAttempts int
}

func NewCartService(repo repository.CartRepository, c cache.CartCache, p infra.ProductClientInterface, logger *zap.Logger) *CartService {
	return &CartService{
		repo:        repo,
		cache:       c,
		products:    p,
		logger:      logger,
		maxAttempts: defaultCartAttempts,
	}
}

// GetCart returns the owner's cart, or an empty one if none was stored yet.
func (s *CartService) GetCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(ownerID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, ownerID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cart cache get", zap.String("owner_id", ownerID), zap.Error(err))
		}

		cart, err = s.repo.GetCart(ctx, ownerID)
		if errors.Is(err, repository.ErrCartNotFound) {
			return domain.NewCart(ownerID), nil
		}
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, ownerID, cart); err != nil {
			s.logger.Warn("cart cache set", zap.String("owner_id", ownerID), zap.Error(err))
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	// callers sharing a flight must not share the value
	return v.(*domain.Cart).Clone(), nil
}

func (s *CartService) AddLine(ctx context.Context, ownerID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	return s.mutate(ctx, ownerID, func(cart *domain.Cart) error {
		p, err := s.lookup(ctx, productID)
		if err != nil {
			return err
		}
		return cart.AddLine(p, quantity)
	})
}

func (s *CartService) UpdateLineQuantity(ctx context.Context, ownerID, lineID string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, ownerID, func(cart *domain.Cart) error {
		line, ok := cart.Line(lineID)
		if !ok {
			return domain.ErrLineNotFound
		}
		if quantity <= 0 {
			return cart.UpdateLineQuantity(lineID, quantity, nil)
		}
		p, err := s.lookup(ctx, line.ProductID)
		if err != nil {
			return err
		}
		return cart.UpdateLineQuantity(lineID, quantity, p)
	})
}

func (s *CartService) RemoveLine(ctx context.Context, ownerID, lineID string) (*domain.Cart, error) {
	return s.mutate(ctx, ownerID, func(cart *domain.Cart) error {
		if _, ok := cart.Line(lineID); !ok {
			return errUnchanged
		}
		cart.RemoveLine(lineID)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, ownerID string) (*domain.Cart, error) {
	return s.mutate(ctx, ownerID, func(cart *domain.Cart) error {
		if cart.IsEmpty() {
			return errUnchanged
		}
		cart.Clear()
		return nil
	})
}

// Merge folds a guest cart into the owner's cart. Every product is looked up
// before the cart is touched, so a failed lookup leaves the stored cart as it
// was and the caller can keep the guest cart for a later attempt.
func (s *CartService) Merge(ctx context.Context, ownerID string, req MergeRequest) (*domain.Cart, error) {
	if len(req.Lines) == 0 {
		return s.GetCart(ctx, ownerID)
	}

	products := make(map[string]*domain.Product, len(req.Lines))
	for _, g := range req.Lines {
		if _, seen := products[g.ProductID]; seen {
			continue
		}
		p, err := s.products.GetProductById(ctx, g.ProductID)
		if err != nil {
			return nil, errors.Wrapf(err, "merge: look up product %s", g.ProductID)
		}
		products[g.ProductID] = p
	}

	return s.mutate(ctx, ownerID, func(cart *domain.Cart) error {
		if req.Token != "" && cart.LastMergeToken == req.Token {
			return errUnchanged
		}
		dropped := cart.Merge(req.Lines, products)
		if dropped > 0 {
			s.logger.Info("merge dropped guest lines",
				zap.String("owner_id", ownerID),
				zap.Int("dropped", dropped),
				zap.Int("guest_lines", len(req.Lines)))
		}
		if req.Token != "" {
			cart.LastMergeToken = req.Token
		}
		return nil
	})
}

// mutate runs apply against the freshest stored cart and saves it with a
// version check. Nothing is written when apply fails.
func (s *CartService) mutate(ctx context.Context, ownerID string, apply func(cart *domain.Cart) error) (*domain.Cart, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		cart, err := s.load(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		if err := apply(cart); err != nil {
			if errors.Is(err, errUnchanged) {
				return cart, nil
			}
			return nil, err
		}

		err = s.repo.SaveCart(ctx, cart)
		if errors.Is(err, repository.ErrVersionConflict) {
			s.logger.Debug("cart version conflict", zap.String("owner_id", ownerID), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "save cart")
		}

		s.remember(cart)
		return cart, nil
	}
	return nil, ErrConcurrentUpdate
}

// load reads the stored cart bypassing the cache, since a write needs the current version.
func (s *CartService) load(ctx context.Context, ownerID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, ownerID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return domain.NewCart(ownerID), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	return cart, nil
}

func (s *CartService) lookup(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := s.products.GetProductById(ctx, productID)
	if err != nil {
		return nil, errors.Wrapf(err, "look up product %s", productID)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

// remember writes a freshly saved cart through to the cache. The cache keeps
// whichever version is newest, so a slower reader cannot put back an older
// cart. If the write fails the entry is dropped instead.
func (s *CartService) remember(cart *domain.Cart) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.cache.Set(ctx, cart.OwnerID, cart)
	if err == nil {
		return
	}
	s.logger.Warn("cart cache write", zap.String("owner_id", cart.OwnerID), zap.Error(err))
	if err := s.cache.Delete(ctx, cart.OwnerID); err != nil {
		s.logger.Warn("cart cache invalidate", zap.String("owner_id", cart.OwnerID), zap.Error(err))
	}
}
