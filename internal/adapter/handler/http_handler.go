package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/log"
	"github.com/rl1809/storefront/internal/port"
)

type HTTPHandler struct {
	cart     *service.CartStore
	checkout *service.CheckoutService
	catalog  port.ProductFetcher
}

type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func NewHTTPHandler(cart *service.CartStore, checkout *service.CheckoutService, catalog port.ProductFetcher) *HTTPHandler {
	return &HTTPHandler{cart: cart, checkout: checkout, catalog: catalog}
}

func (h *HTTPHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", h.ClearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", h.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{id}", h.UpdateQuantity).Methods(http.MethodPatch)
	api.HandleFunc("/cart/items/{id}", h.RemoveItem).Methods(http.MethodDelete)
	api.HandleFunc("/checkout/summary", h.CheckoutSummary).Methods(http.MethodGet)
	api.HandleFunc("/checkout", h.Checkout).Methods(http.MethodPost)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: h.cart.View()})
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context()).With().Str(log.KeyTag, "HTTPHandler AddItem").Logger()

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.ProductID == "" || req.Quantity < 1 {
		writeJSON(w, http.StatusBadRequest, Response{Message: "product_id is required and quantity must be at least 1"})
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		logger.Error().Err(err).Str(log.KeyProductID, req.ProductID).Msg("failed fetching product")
		writeJSON(w, http.StatusBadGateway, Response{Message: "failed fetching product"})
		return
	}

	if err := h.cart.AddItem(product, req.Quantity); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: h.cart.View()})
}

// UpdateQuantity ignores quantities below 1 and unknown ids, returning the
// unchanged cart.
func (h *HTTPHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	h.cart.UpdateQuantity(mux.Vars(r)["id"], req.Quantity)
	writeJSON(w, http.StatusOK, Response{Success: true, Data: h.cart.View()})
}

func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.cart.RemoveItem(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, Response{Success: true, Data: h.cart.View()})
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.ClearCart()
	writeJSON(w, http.StatusOK, Response{Success: true, Data: h.cart.View()})
}

func (h *HTTPHandler) CheckoutSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: h.checkout.Summary()})
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var customer domain.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), customer)
	if err != nil {
		status := http.StatusBadGateway
		message := "failed to place order"

		if errors.Is(err, service.ErrInvalidCustomer) {
			status = http.StatusBadRequest
			message = err.Error()
		} else if errors.Is(err, service.ErrEmptyCart) {
			status = http.StatusConflict
			message = "cart is empty"
		}

		writeJSON(w, status, Response{Message: message})
		return
	}

	writeJSON(w, http.StatusCreated, Response{Success: true, Data: order})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
