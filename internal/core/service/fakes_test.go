package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rl1809/storefront/internal/core/domain"
)

var errProductUnavailable = errors.New("product unavailable")

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]domain.Product
	failing  map[string]bool
	calls    map[string]int
	gate     chan struct{}
}

func newFakeCatalog(products ...domain.Product) *fakeCatalog {
	c := &fakeCatalog{
		products: make(map[string]domain.Product),
		failing:  make(map[string]bool),
		calls:    make(map[string]int),
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if c.gate != nil {
		<-c.gate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[productID]++
	if c.failing[productID] {
		return domain.Product{}, fmt.Errorf("%w: %s", errProductUnavailable, productID)
	}
	p, ok := c.products[productID]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", errProductUnavailable, productID)
	}
	return p, nil
}

func (c *fakeCatalog) callCount(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[productID]
}

type fakeStorage struct {
	mu      sync.Mutex
	state   domain.CartState
	loadErr error
	saveErr error
	saves   []domain.CartState
}

func newFakeStorage(state domain.CartState) *fakeStorage {
	return &fakeStorage{state: state}
}

func (s *fakeStorage) LoadCart(ctx context.Context) (domain.CartState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return domain.CartState{}, s.loadErr
	}
	return s.state.Clone(), nil
}

func (s *fakeStorage) SaveCart(ctx context.Context, state domain.CartState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves = append(s.saves, state.Clone())
	s.state = state.Clone()
	return nil
}

func (s *fakeStorage) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func (s *fakeStorage) current() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *recordingNotifier) lastSuccess() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.successes) == 0 {
		return ""
	}
	return n.successes[len(n.successes)-1]
}

func product(id, name string, amount int64) domain.Product {
	return domain.Product{
		ID:    id,
		Name:  name,
		Price: domain.NewPrice(amount, "USD"),
	}
}

func stateOf(pairs ...any) domain.CartState {
	state := domain.NewCartState()
	for i := 0; i+1 < len(pairs); i += 2 {
		state.Add(pairs[i].(string), pairs[i+1].(int))
	}
	return state
}

func assertAmount(t *testing.T, want int64, got domain.Price) {
	t.Helper()
	assert.Truef(t, decimal.NewFromInt(want).Equal(got.Amount), "expected amount %d, got %s", want, got.Amount)
}

func lineQuantities(lines []domain.CartLine) map[string]int {
	out := make(map[string]int, len(lines))
	for _, l := range lines {
		out[l.ID] = l.Quantity
	}
	return out
}

func lineIDs(lines []domain.CartLine) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ID)
	}
	return ids
}
