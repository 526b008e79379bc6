package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type CartStorage interface {
	// LoadCart reads the persisted cart. A missing slot is an empty cart, not an error.
	LoadCart(ctx context.Context) (domain.CartState, error)

	// SaveCart overwrites the persisted cart with state
	SaveCart(ctx context.Context, state domain.CartState) error
}
