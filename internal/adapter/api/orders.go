package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

func (c *Client) SubmitCheckout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error) {
	order, err := do[domain.Order](ctx, c, http.MethodPost, "/checkout", nil, req)
	if err != nil {
		return domain.Order{}, err
	}
	return *order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := do[[]domain.Order](ctx, c, http.MethodGet, "/orders", nil, nil)
	if err != nil {
		return nil, err
	}
	return *orders, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	order, err := do[domain.Order](ctx, c, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, nil)
	if err != nil {
		return domain.Order{}, err
	}
	return *order, nil
}

var _ port.OrderGateway = (*Client)(nil)
