package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type LineItemType string

const (
	LineItemProduct  LineItemType = "PRODUCT"
	LineItemDiscount LineItemType = "DISCOUNT"
	LineItemDelivery LineItemType = "DELIVERY"
)

type LineItem struct {
	ID          string       `json:"id"`
	ReferenceID string       `json:"referenceId"`
	Type        LineItemType `json:"type"`
	Price       Price        `json:"price"`
	Quantity    int          `json:"quantity,omitempty"`
}

type OrderCart struct {
	Tax      float64    `json:"tax"`
	Items    []LineItem `json:"items"`
	Subtotal Price      `json:"subtotal"`
	Total    Price      `json:"total"`
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Order struct {
	ID        string      `json:"id"`
	User      User        `json:"user"`
	Cart      OrderCart   `json:"cart"`
	Status    OrderStatus `json:"status"`
	Timestamp *time.Time  `json:"timestamp,omitempty"`
}

type Shipping struct {
	Address    string `json:"address"    validate:"required"`
	City       string `json:"city"       validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country"    validate:"required"`
}

// Customer is what the shopper fills in at checkout.
type Customer struct {
	Name     string   `json:"name"     validate:"required"`
	Email    string   `json:"email"    validate:"required,email"`
	Shipping Shipping `json:"shipping"`
}

type CheckoutUser struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Shipping Shipping `json:"shipping"`
}

type CheckoutItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type CheckoutRequest struct {
	User     CheckoutUser   `json:"user"`
	Products []CheckoutItem `json:"products"`
}

type CheckoutSummary struct {
	Subtotal Price   `json:"subtotal"`
	TaxRate  float64 `json:"taxRate"`
	Tax      Price   `json:"tax"`
	Total    Price   `json:"total"`
}
