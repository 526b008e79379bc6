package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/rl1809/storefront/internal/adapter/api"
	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/log"
	"github.com/rl1809/storefront/internal/port"
)

// App wires the cart store and checkout service to the configured catalog API
// and persistence medium.
type App struct {
	Config   config.Config
	Client   *api.Client
	Storage  storage.CartStorage
	Cart     *service.CartStore
	Checkout *service.CheckoutService
}

func New(c context.Context, cfg config.Config, notifier port.Notifier) (*App, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "app New").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing storage").Logger()
	logger.Debug().Msg("initializing storage")
	store, err := storage.Open(logger.WithContext(c), cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	logger.Debug().Msg("initialized storage")

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)

	logger = logger.With().Str(log.KeyProcess, "initializing cart").Logger()
	cart := service.NewCartStore(
		c,
		client,
		store,
		notifier,
		service.WithDefaultCurrency(cfg.Cart.DefaultCurrency),
	)
	checkout := service.NewCheckoutService(cart, client, notifier, cfg.Checkout.TaxRate)
	logger.Debug().Msg("initialized cart")

	return &App{
		Config:   cfg,
		Client:   client,
		Storage:  store,
		Cart:     cart,
		Checkout: checkout,
	}, nil
}

// Handler returns the local HTTP API with tracing and request logging.
func (a *App) Handler(c context.Context) http.Handler {
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(a.Config.Application.Name),
		handler.Logging(*zerolog.Ctx(c)),
	)
	handler.NewHTTPHandler(a.Cart, a.Checkout, a.Client).Register(router)
	return router
}

// Close flushes the pending cart write before releasing the storage.
func (a *App) Close(c context.Context) error {
	var errs []error
	if err := a.Cart.Close(c); err != nil {
		errs = append(errs, fmt.Errorf("close cart: %w", err))
	}
	if err := a.Storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}
