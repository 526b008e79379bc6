package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type OrderGateway interface {
	// SubmitCheckout places an order and returns it as created by the API
	SubmitCheckout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error)

	ListOrders(ctx context.Context) ([]domain.Order, error)

	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
}
