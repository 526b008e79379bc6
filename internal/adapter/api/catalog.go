package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

func (c *Client) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	p, err := do[domain.Product](ctx, c, http.MethodGet, "/products/"+url.PathEscape(productID), nil, nil)
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

func (c *Client) ListProducts(ctx context.Context, categorySlug string) ([]domain.Product, error) {
	var query url.Values
	if categorySlug != "" {
		query = url.Values{"category": {categorySlug}}
	}
	products, err := do[[]domain.Product](ctx, c, http.MethodGet, "/products", query, nil)
	if err != nil {
		return nil, err
	}
	return *products, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := do[[]domain.Category](ctx, c, http.MethodGet, "/categories", nil, nil)
	if err != nil {
		return nil, err
	}
	return *categories, nil
}

func (c *Client) GetCategory(ctx context.Context, categoryID string) (domain.Category, error) {
	category, err := do[domain.Category](ctx, c, http.MethodGet, "/categories/"+url.PathEscape(categoryID), nil, nil)
	if err != nil {
		return domain.Category{}, err
	}
	return *category, nil
}

var _ port.CatalogService = (*Client)(nil)
