package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

type stubCatalog map[string]domain.Product

func (c stubCatalog) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	p, ok := c[productID]
	if !ok {
		return domain.Product{}, errors.New("not found")
	}
	return p, nil
}

type memoryStorage struct {
	mu    sync.Mutex
	state domain.CartState
}

func (m *memoryStorage) LoadCart(ctx context.Context) (domain.CartState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone(), nil
}

func (m *memoryStorage) SaveCart(ctx context.Context, state domain.CartState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state.Clone()
	return nil
}

type stubGateway struct {
	err      error
	received domain.CheckoutRequest
}

func (g *stubGateway) SubmitCheckout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error) {
	g.received = req
	if g.err != nil {
		return domain.Order{}, g.err
	}
	return domain.Order{ID: "order-1", Status: domain.OrderStatusPending}, nil
}

func (g *stubGateway) ListOrders(ctx context.Context) ([]domain.Order, error) { return nil, nil }

func (g *stubGateway) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return domain.Order{}, nil
}

type cartResponse struct {
	Success bool            `json:"success"`
	Data    domain.CartView `json:"data"`
	Message string          `json:"message"`
}

type testServer struct {
	router  *mux.Router
	cart    *service.CartStore
	gateway *stubGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	catalog := stubCatalog{
		"p1": {ID: "p1", Name: "Mug", Price: domain.NewPrice(12, "USD")},
		"p2": {ID: "p2", Name: "Poster", Price: domain.NewPrice(8, "USD")},
	}
	storage := &memoryStorage{state: domain.NewCartState()}
	cart := service.NewCartStore(context.Background(), catalog, storage, nil)
	t.Cleanup(func() { cart.Close(context.Background()) })

	gateway := &stubGateway{}
	checkout := service.NewCheckoutService(cart, gateway, nil, 0.1)

	router := mux.NewRouter()
	router.Use(Logging(zerolog.Nop()))
	NewHTTPHandler(cart, checkout, catalog).Register(router)

	return &testServer{router: router, cart: cart, gateway: gateway}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var resp cartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, "req-42")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(headerRequestID))
}

func TestAddItem(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "p1", Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeCart(t, rec)
	assert.True(t, resp.Success)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "p1", resp.Data.Items[0].ID)
	assert.Equal(t, 2, resp.Data.TotalItems)
	assert.Equal(t, "24", resp.Data.Subtotal.Amount.String())
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/cart/items", map[string]string{"product_id": "p2"})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, decodeCart(t, rec).Data.TotalItems)
}

func TestAddItemRejections(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{name: "missing product id", body: AddItemRequest{Quantity: 1}, status: http.StatusBadRequest},
		{name: "negative quantity", body: AddItemRequest{ProductID: "p1", Quantity: -3}, status: http.StatusBadRequest},
		{name: "malformed body", body: "not an object", status: http.StatusBadRequest},
		{name: "unknown product", body: AddItemRequest{ProductID: "nope", Quantity: 1}, status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := s.do(t, http.MethodPost, "/api/cart/items", tt.body)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, 0, s.cart.TotalItems())
		})
	}
}

func TestUpdateAndRemoveItem(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "p1", Quantity: 1})
	s.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "p2", Quantity: 1})

	rec := s.do(t, http.MethodPatch, "/api/cart/items/p1", UpdateQuantityRequest{Quantity: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, decodeCart(t, rec).Data.TotalItems)

	rec = s.do(t, http.MethodPatch, "/api/cart/items/p1", UpdateQuantityRequest{Quantity: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, decodeCart(t, rec).Data.TotalItems)

	rec = s.do(t, http.MethodDelete, "/api/cart/items/p1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "p2", resp.Data.Items[0].ID)
}

func TestClearCart(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "p1", Quantity: 3})

	rec := s.do(t, http.MethodDelete, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeCart(t, rec)
	assert.Empty(t, resp.Data.Items)
	assert.Equal(t, 0, resp.Data.TotalItems)

	rec = s.do(t, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, 0, decodeCart(t, rec).Data.TotalItems)
}

func TestCheckoutSummary(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "p1", Quantity: 1})

	rec := s.do(t, http.MethodGet, "/api/checkout/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.CheckoutSummary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "12", resp.Data.Subtotal.Amount.String())
	assert.Equal(t, "1.2", resp.Data.Tax.Amount.String())
	assert.Equal(t, "13.2", resp.Data.Total.Amount.String())
}

func validCustomer() domain.Customer {
	return domain.Customer{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Shipping: domain.Shipping{
			Address:    "12 St James's Square",
			City:       "London",
			PostalCode: "SW1Y 4JH",
			Country:    "UK",
		},
	}
}

func TestCheckout(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "p1", Quantity: 2})

	rec := s.do(t, http.MethodPost, "/api/checkout", validCustomer())
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, []domain.CheckoutItem{{ID: "p1", Quantity: 2}}, s.gateway.received.Products)
	assert.Equal(t, 0, s.cart.TotalItems())
}

func TestCheckoutErrors(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/api/checkout", validCustomer())

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid customer", func(t *testing.T) {
		s := newTestServer(t)
		s.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "p1", Quantity: 1})

		customer := validCustomer()
		customer.Email = "not-an-email"
		rec := s.do(t, http.MethodPost, "/api/checkout", customer)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 1, s.cart.TotalItems())
	})

	t.Run("gateway failure keeps cart", func(t *testing.T) {
		s := newTestServer(t)
		s.gateway.err = errors.New("boom")
		s.do(t, http.MethodPost, "/api/cart/items", AddItemRequest{ProductID: "p1", Quantity: 1})

		rec := s.do(t, http.MethodPost, "/api/checkout", validCustomer())

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, 1, s.cart.TotalItems())
	})
}
