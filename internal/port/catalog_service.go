package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type ProductFetcher interface {
	// GetProduct fetches one product by id. Any error means the product is
	// unavailable for now.
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
}

type CatalogService interface {
	ProductFetcher

	// ListProducts returns every product, or those of one category when
	// categorySlug is not empty.
	ListProducts(ctx context.Context, categorySlug string) ([]domain.Product, error)

	ListCategories(ctx context.Context) ([]domain.Category, error)

	GetCategory(ctx context.Context, categoryID string) (domain.Category, error)
}
