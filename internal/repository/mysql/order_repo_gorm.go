package mysql

import (
	"context"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type orderRepo struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewOrderRepository(db *gorm.DB, logger *zap.Logger) repository.OrderRepository {
	return &orderRepo{db: db, logger: logger}
}

// Save inserts the order and its lines in one transaction.
func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicateOrderNumber
		}
		r.logger.Error("save order", zap.String("order_number", order.OrderNumber), zap.Error(err))
		return errors.Wrap(err, "save order")
	}

	if order.ID == 0 {
		return errors.New("failed to assign order ID")
	}

	r.logger.Debug("order saved", zap.Uint64("order_id", order.ID), zap.String("order_number", order.OrderNumber))
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Lines").First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "find order %d", id)
	}
	return &o, nil
}

func (r *orderRepo) FindByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrapf(err, "find orders of %s", ownerID)
	}
	return out, nil
}

func (r *orderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "find all orders")
	}
	return out, nil
}

// UpdateState only touches lifecycle fields; lines and money are frozen.
func (r *orderRepo) UpdateState(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status = ?", order.ID, from).
		Updates(map[string]any{
			"status":                order.Status,
			"is_paid":               order.IsPaid,
			"paid_at":               order.PaidAt,
			"payment_id":            order.PaymentResult.ID,
			"payment_status":        order.PaymentResult.Status,
			"payment_update_time":   order.PaymentResult.UpdateTime,
			"payment_email_address": order.PaymentResult.EmailAddress,
			"is_delivered":          order.IsDelivered,
			"delivered_at":          order.DeliveredAt,
			"tracking_number":       order.TrackingNumber,
			"updated_at":            order.UpdatedAt,
		})
	if result.Error != nil {
		return errors.Wrapf(result.Error, "update order %d", order.ID)
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrderConflict
	}
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id uint64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Order{}, id).Error
	})
	if err != nil {
		return errors.Wrapf(err, "delete order %d", id)
	}
	return nil
}
