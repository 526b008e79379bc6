package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "USD"

type Price struct {
	Amount   decimal.Decimal
	Currency string
}

type priceJSON struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
}

func NewPrice(amount int64, currency string) Price {
	return Price{Amount: decimal.NewFromInt(amount), Currency: currency}
}

// Times multiplies the amount by quantity, keeping the currency.
func (p Price) Times(quantity int) Price {
	return Price{Amount: p.Amount.Mul(decimal.NewFromInt(int64(quantity))), Currency: p.Currency}
}

func (p Price) String() string {
	return fmt.Sprintf("%s %s", p.Amount.StringFixed(2), p.Currency)
}

// MarshalJSON writes the amount as a bare JSON number, the way the storefront
// API sends it.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(priceJSON{Amount: json.Number(p.Amount.String()), Currency: p.Currency})
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode price: %w", err)
	}
	p.Amount = raw.Amount
	p.Currency = raw.Currency
	return nil
}
