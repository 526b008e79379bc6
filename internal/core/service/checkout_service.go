package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/log"
	"github.com/rl1809/storefront/internal/otel"
	"github.com/rl1809/storefront/internal/port"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCustomer = errors.New("invalid customer details")
)

type CheckoutService struct {
	cart      *CartStore
	orders    port.OrderGateway
	notifier  port.Notifier
	validate  *validator.Validate
	taxRate   decimal.Decimal
	newUserID func() string
}

func NewCheckoutService(
	cart *CartStore,
	orders port.OrderGateway,
	notifier port.Notifier,
	taxRate float64,
) *CheckoutService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &CheckoutService{
		cart:      cart,
		orders:    orders,
		notifier:  notifier,
		validate:  validator.New(),
		taxRate:   decimal.NewFromFloat(taxRate),
		newUserID: uuid.NewString,
	}
}

// Summary prices the hydrated cart with tax applied on top of the subtotal.
func (s *CheckoutService) Summary() domain.CheckoutSummary {
	subtotal := s.cart.Subtotal()
	tax := domain.Price{Amount: subtotal.Amount.Mul(s.taxRate), Currency: subtotal.Currency}
	rate, _ := s.taxRate.Float64()
	return domain.CheckoutSummary{
		Subtotal: subtotal,
		TaxRate:  rate,
		Tax:      tax,
		Total:    domain.Price{Amount: subtotal.Amount.Add(tax.Amount), Currency: subtotal.Currency},
	}
}

// PlaceOrder submits the hydrated cart lines for customer. The cart is cleared
// wholesale only when the order was accepted; on failure it is left as is so
// the shopper can retry.
func (s *CheckoutService) PlaceOrder(c context.Context, customer domain.Customer) (domain.Order, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService PlaceOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService PlaceOrder").
		Logger()

	if err := s.validate.StructCtx(c, customer); err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidCustomer, err)
		otel.HandleError(err, span)
		logger.Warn().Err(err).Msg("rejected checkout")
		return domain.Order{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "waiting for cart hydration").Logger()
	if err := s.cart.Wait(c); err != nil {
		err = fmt.Errorf("wait for cart hydration: %w", err)
		otel.HandleError(err, span)
		return domain.Order{}, err
	}

	items := s.cart.Items()
	if len(items) == 0 {
		s.notifier.Error("Your cart is empty")
		otel.HandleError(ErrEmptyCart, span)
		return domain.Order{}, ErrEmptyCart
	}

	req := domain.CheckoutRequest{
		User: domain.CheckoutUser{
			ID:       s.newUserID(),
			Name:     customer.Name,
			Email:    customer.Email,
			Shipping: customer.Shipping,
		},
		Products: make([]domain.CheckoutItem, 0, len(items)),
	}
	for _, item := range items {
		req.Products = append(req.Products, domain.CheckoutItem{ID: item.ID, Quantity: item.Quantity})
	}

	logger = logger.With().
		Str(log.KeyProcess, "submitting checkout").
		Int(log.KeyCartItems, len(req.Products)).
		Logger()
	logger.Info().Msg("submitting checkout")
	order, err := s.orders.SubmitCheckout(c, req)
	if err != nil {
		err = fmt.Errorf("submit checkout: %w", err)
		otel.HandleError(err, span)
		logger.Error().Err(err).Msg("failed placing order")
		s.notifier.Error("Failed to place order")
		return domain.Order{}, err
	}

	logger.Info().Str(log.KeyOrderID, order.ID).Msg("placed order")
	s.notifier.Success("Order placed successfully")
	// The whole cart is cleared, including lines added after items was read
	// and lines that never hydrated. Neither was part of this order.
	s.cart.ClearCart()
	return order, nil
}
