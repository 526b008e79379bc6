package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var ErrMalformedCart = errors.New("malformed cart state")

// CartState is the persisted part of a cart: quantity per product id plus the
// order in which distinct ids were first added. Every quantity is at least 1.
type CartState struct {
	ids        []string
	quantities map[string]int
}

func NewCartState() CartState {
	return CartState{quantities: make(map[string]int)}
}

func (c CartState) Len() int {
	return len(c.ids)
}

func (c CartState) IDs() []string {
	ids := make([]string, len(c.ids))
	copy(ids, c.ids)
	return ids
}

func (c CartState) Quantity(productID string) (int, bool) {
	q, ok := c.quantities[productID]
	return q, ok
}

// TotalQuantity sums quantities over every id, hydrated or not.
func (c CartState) TotalQuantity() int {
	total := 0
	for _, q := range c.quantities {
		total += q
	}
	return total
}

// Add increments the quantity of productID, appending it to the order when new.
// It reports false and leaves the state untouched when the cart total would
// overflow.
func (c *CartState) Add(productID string, quantity int) bool {
	c.init()
	current, ok := c.quantities[productID]
	if quantity > math.MaxInt-c.TotalQuantity() {
		return false
	}
	if !ok {
		c.ids = append(c.ids, productID)
	}
	c.quantities[productID] = current + quantity
	return true
}

// Set replaces the quantity of an id already in the cart. It reports whether
// anything changed.
func (c *CartState) Set(productID string, quantity int) bool {
	current, ok := c.quantities[productID]
	if !ok || current == quantity {
		return false
	}
	if quantity-current > math.MaxInt-c.TotalQuantity() {
		return false
	}
	c.quantities[productID] = quantity
	return true
}

func (c *CartState) Remove(productID string) bool {
	if _, ok := c.quantities[productID]; !ok {
		return false
	}
	delete(c.quantities, productID)
	for i, id := range c.ids {
		if id == productID {
			c.ids = append(c.ids[:i:i], c.ids[i+1:]...)
			break
		}
	}
	return true
}

func (c *CartState) Clear() {
	c.ids = nil
	c.quantities = make(map[string]int)
}

func (c CartState) Clone() CartState {
	out := CartState{
		ids:        c.IDs(),
		quantities: make(map[string]int, len(c.quantities)),
	}
	for id, q := range c.quantities {
		out.quantities[id] = q
	}
	return out
}

func (c *CartState) init() {
	if c.quantities == nil {
		c.quantities = make(map[string]int)
	}
}

// MarshalJSON writes a plain object whose keys follow insertion order.
func (c CartState) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range c.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", c.quantities[id])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a {"id": quantity} object keeping key order. Entries whose
// quantity is not a whole number of at least 1 are dropped.
func (c *CartState) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected object", ErrMalformedCart)
	}

	state := NewCartState()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedCart, err)
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: expected string key", ErrMalformedCart)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: quantity for %q: %v", ErrMalformedCart, id, err)
		}
		q, ok := parseQuantity(raw)
		if !ok || q < 1 {
			continue
		}
		// A repeated key keeps its first position and takes the last quantity.
		// Entries that would overflow the cart total are dropped.
		if _, seen := state.quantities[id]; seen {
			state.Set(id, q)
		} else {
			state.Add(id, q)
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}

	*c = state
	return nil
}

type CartLine struct {
	ID       string  `json:"id"`
	Quantity int     `json:"quantity"`
	Product  Product `json:"product"`
}

func (l CartLine) LineTotal() Price {
	return l.Product.Price.Times(l.Quantity)
}

type CartView struct {
	Items      []CartLine `json:"items"`
	TotalItems int        `json:"totalItems"`
	Subtotal   Price      `json:"subtotal"`
	Total      Price      `json:"total"`
	IsLoading  bool       `json:"isLoading"`
}

// SumLines totals the lines in the first line's currency, or defaultCurrency
// when there are none. Mixed currencies are summed as-is.
func SumLines(lines []CartLine, defaultCurrency string) Price {
	total := Price{Currency: defaultCurrency}
	if len(lines) > 0 {
		total.Currency = lines[0].Product.Price.Currency
	}
	for _, line := range lines {
		total.Amount = total.Amount.Add(line.LineTotal().Amount)
	}
	return total
}

func parseQuantity(raw json.RawMessage) (int, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		if i > math.MaxInt {
			return 0, false
		}
		return int(i), true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f >= math.MaxInt || f < math.MinInt {
		return 0, false
	}
	return int(f), true
}
