package repository

import (
	"context"

	"gorm.io/gorm"

	"pharmacy-order-api/internal/model"
)

type ProductRepository interface {
	FindActiveByIDs(ctx context.Context, productIDs []string) ([]*model.Product, error)
	// FindNamesByIDs resolves product names without the active filter, so
	// receipts keep their names after a product is retired.
	FindNamesByIDs(ctx context.Context, productIDs []string) (map[string]string, error)
	List(ctx context.Context, nameQuery, categoryID string) ([]*model.Product, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) FindActiveByIDs(ctx context.Context, productIDs []string) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", productIDs).
		Where("is_active = ?", true).
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) FindNamesByIDs(ctx context.Context, productIDs []string) (map[string]string, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Select("id, name").
		Where("id IN ?", productIDs).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	return names, nil
}

func (r *productRepoImpl) List(ctx context.Context, nameQuery, categoryID string) ([]*model.Product, error) {
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if nameQuery != "" {
		q = q.Where("name LIKE ?", "%"+nameQuery+"%")
	}
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}

	var products []*model.Product
	err := q.Order("name asc").Limit(100).Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) ListCategories(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name asc").
		Find(&categories).Error

	if err != nil {
		return nil, err
	}

	return categories, nil
}
