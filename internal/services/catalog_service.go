package services

import (
	"context"

	"minimart/internal/domain"
	"minimart/internal/store"
)

// CatalogService is the thin read/write surface over the product store. The
// price-ascending listing order comes from the store itself.
type CatalogService struct {
	Products store.ProductStore
}

func NewCatalogService(products store.ProductStore) *CatalogService {
	return &CatalogService{Products: products}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.Products.List(ctx)
}

func (s *CatalogService) CreateProduct(ctx context.Context, name string, price int64) (*domain.Product, error) {
	p := &domain.Product{Name: name, Price: price}
	if err := s.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return s.Products.SearchByName(ctx, query)
}
