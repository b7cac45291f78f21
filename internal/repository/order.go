package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nextfunnel-checkout/internal/model"
)

type OrderRepository interface {
	// Create records a freshly created provider order. Re-inserting the
	// same order id is a no-op so that client retries stay safe.
	Create(ctx context.Context, order *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	// MarkCompleted moves an order to COMPLETED. Only CREATED and
	// APPROVED rows are updated, so replayed captures and webhooks
	// converge on one terminal row.
	MarkCompleted(ctx context.Context, orderID, captureID, payerName, payerEmail string) error
	MarkFailed(ctx context.Context, orderID string) error
	IsCompleted(ctx context.Context, orderID string) (bool, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(order).Error
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) MarkCompleted(ctx context.Context, orderID, captureID, payerName, payerEmail string) error {
	updates := map[string]interface{}{
		"status":     "COMPLETED",
		"updated_at": time.Now(),
	}
	if captureID != "" {
		updates["capture_id"] = captureID
	}
	if payerName != "" {
		updates["payer_name"] = payerName
	}
	if payerEmail != "" {
		updates["payer_email"] = payerEmail
	}

	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status IN ?",
			orderID,
			[]string{"CREATED", "APPROVED"},
		).
		Updates(updates).Error
}

func (r *orderRepoImpl) MarkFailed(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status NOT IN ?",
			orderID,
			[]string{"COMPLETED", "FAILED"},
		).
		Updates(map[string]interface{}{
			"status":     "FAILED",
			"updated_at": time.Now(),
		}).Error
}

func (r *orderRepoImpl) IsCompleted(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Where("status = ?", "COMPLETED").
		Count(&count).Error

	return count > 0, err
}
