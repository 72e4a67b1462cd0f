package service

import (
	"context"

	"pharmacy-order-api/internal/model"
	"pharmacy-order-api/internal/repository"
)

// CatalogService is the read-only browsing collaborator; the order core only
// consumes the catalog through the pricing engine.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*model.Category, error)
	ListProducts(ctx context.Context, nameQuery, categoryID string) ([]*model.Product, error)
}

type catalogServiceImpl struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogServiceImpl{
		productRepo: productRepo,
	}
}

func (s *catalogServiceImpl) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return s.productRepo.ListCategories(ctx)
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context, nameQuery, categoryID string) ([]*model.Product, error) {
	return s.productRepo.List(ctx, nameQuery, categoryID)
}
