package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pharmacy-order-api/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error
	CreateAddress(ctx context.Context, tx *gorm.DB, address *model.Address) error
	FindByID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error)
	// UpdateStatusFrom transitions the order only when it is still in the
	// `from` status and reports whether the guarded update won.
	UpdateStatusFrom(ctx context.Context, tx *gorm.DB, orderID string, from, to model.OrderStatus) (bool, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return r.conn(tx).WithContext(ctx).Omit("Items", "Address", "Delivery").Create(order).Error
}

func (r *orderRepoImpl) CreateItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error {
	return r.conn(tx).WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) CreateAddress(ctx context.Context, tx *gorm.DB, address *model.Address) error {
	return r.conn(tx).WithContext(ctx).Create(address).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.conn(tx).WithContext(ctx).
		Preload("Items").
		Preload("Address").
		Preload("Delivery").
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) UpdateStatusFrom(ctx context.Context, tx *gorm.DB, orderID string, from, to model.OrderStatus) (bool, error) {
	result := r.conn(tx).WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
