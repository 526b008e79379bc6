package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/log"
	"github.com/rl1809/storefront/internal/port"
)

var (
	ErrInvalidProduct  = errors.New("product id must not be empty")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

const fallbackItemName = "Item"

// CartStore owns what is in the cart: persisted quantities in insertion order,
// a cache of product details fetched from the catalog, and the aggregates
// derived from both. It is safe for concurrent use.
//
// Every mutation that leaves an id with a positive quantity but no cached
// product starts a hydration pass that fetches the missing products
// concurrently. Failed fetches are logged and retried on a later mutation.
type CartStore struct {
	ctx             context.Context
	catalog         port.ProductFetcher
	storage         port.CartStorage
	notifier        port.Notifier
	defaultCurrency string

	mu       sync.Mutex
	state    domain.CartState
	cache    map[string]domain.Product
	inflight int
	idle     chan struct{}

	flight singleflight.Group
	// fetchJoined is called once a fetch has been handed to flight.
	fetchJoined func(productID string)

	pending   *domain.CartState
	persistCh chan struct{}
	done      chan struct{}
	writer    sync.WaitGroup
	closeOnce sync.Once
}

type Option func(*CartStore)

func WithDefaultCurrency(currency string) Option {
	return func(s *CartStore) {
		if currency != "" {
			s.defaultCurrency = currency
		}
	}
}

func withFetchJoined(fn func(productID string)) Option {
	return func(s *CartStore) {
		s.fetchJoined = fn
	}
}

// NewCartStore loads the persisted cart once and starts hydrating it. The
// context supplies the logger and values for background work; its
// cancellation does not stop the store, Close does.
func NewCartStore(
	ctx context.Context,
	catalog port.ProductFetcher,
	storage port.CartStorage,
	notifier port.Notifier,
	opts ...Option,
) *CartStore {
	if notifier == nil {
		notifier = nopNotifier{}
	}

	idle := make(chan struct{})
	close(idle)

	s := &CartStore{
		ctx:             context.WithoutCancel(ctx),
		catalog:         catalog,
		storage:         storage,
		notifier:        notifier,
		defaultCurrency: domain.DefaultCurrency,
		cache:           make(map[string]domain.Product),
		idle:            idle,
		persistCh:       make(chan struct{}, 1),
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.state = s.load()

	s.writer.Add(1)
	go s.persistLoop()

	s.mu.Lock()
	s.reconcileLocked()
	s.mu.Unlock()

	return s
}

// AddItem caches product as the latest known version and adds quantity to its
// line, creating the line at the end of the cart when new.
func (s *CartStore) AddItem(product domain.Product, quantity int) error {
	if product.ID == "" {
		return ErrInvalidProduct
	}
	if quantity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	s.mu.Lock()
	if !s.state.Add(product.ID, quantity) {
		s.mu.Unlock()
		return fmt.Errorf("%w: adding %d would overflow the cart", ErrInvalidQuantity, quantity)
	}
	s.cache[product.ID] = product
	s.persistLocked()
	s.reconcileLocked()
	s.mu.Unlock()

	s.notifier.Success(fmt.Sprintf("Added %s to cart", product.Name))
	return nil
}

// RemoveItem drops the line for productID. The cached product is kept.
func (s *CartStore) RemoveItem(productID string) {
	s.mu.Lock()
	name := fallbackItemName
	if p, ok := s.cache[productID]; ok && p.Name != "" {
		name = p.Name
	}
	if s.state.Remove(productID) {
		s.persistLocked()
		s.reconcileLocked()
	}
	s.mu.Unlock()

	s.notifier.Success(fmt.Sprintf("Removed %s from cart", name))
}

// UpdateQuantity sets the quantity of a line already in the cart. Quantities
// below 1 are ignored; removing a line is RemoveItem's job.
func (s *CartStore) UpdateQuantity(productID string, quantity int) {
	if quantity < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Set(productID, quantity) {
		s.persistLocked()
		s.reconcileLocked()
	}
}

// ClearCart empties the cart. Cached products survive so re-adding them needs
// no fetch.
func (s *CartStore) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Len() == 0 {
		return
	}
	s.state.Clear()
	s.persistLocked()
}

// Items returns hydrated lines in insertion order. Ids whose product has not
// been fetched yet are left out.
func (s *CartStore) Items() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsLocked()
}

// TotalItems sums the persisted quantities, including lines that are not
// hydrated yet.
func (s *CartStore) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalQuantity()
}

func (s *CartStore) Subtotal() domain.Price {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SumLines(s.itemsLocked(), s.defaultCurrency)
}

func (s *CartStore) Total() domain.Price {
	return s.Subtotal()
}

func (s *CartStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// View returns every read accessor from a single snapshot.
func (s *CartStore) View() domain.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.itemsLocked()
	total := domain.SumLines(items, s.defaultCurrency)
	return domain.CartView{
		Items:      items,
		TotalItems: s.state.TotalQuantity(),
		Subtotal:   total,
		Total:      total,
		IsLoading:  s.inflight > 0,
	}
}

// Wait blocks until no hydration pass is in flight.
func (s *CartStore) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.inflight == 0 {
			s.mu.Unlock()
			return nil
		}
		idle := s.idle
		s.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close writes any pending cart state and stops the background writer.
// Mutations after Close are no longer persisted.
func (s *CartStore) Close(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.done) })

	stopped := make(chan struct{})
	go func() {
		s.writer.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *CartStore) itemsLocked() []domain.CartLine {
	ids := s.state.IDs()
	lines := make([]domain.CartLine, 0, len(ids))
	for _, id := range ids {
		quantity, _ := s.state.Quantity(id)
		product, ok := s.cache[id]
		if quantity <= 0 || !ok {
			continue
		}
		lines = append(lines, domain.CartLine{ID: id, Quantity: quantity, Product: product})
	}
	return lines
}

func (s *CartStore) load() domain.CartState {
	logger := zerolog.Ctx(s.ctx).
		With().
		Str(log.KeyTag, "CartStore load").
		Logger()

	state, err := s.storage.LoadCart(s.ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed loading cart, starting with an empty cart")
		return domain.NewCartState()
	}
	logger.Debug().Int(log.KeyCartItems, state.Len()).Msg("loaded cart")
	return state
}

// reconcileLocked starts a hydration pass for every id with a positive
// quantity and no cached product. The missing set is computed under the same
// lock as the mutation that triggered it.
func (s *CartStore) reconcileLocked() {
	var missing []string
	for _, id := range s.state.IDs() {
		quantity, _ := s.state.Quantity(id)
		if _, cached := s.cache[id]; quantity > 0 && !cached {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return
	}

	if s.inflight == 0 {
		s.idle = make(chan struct{})
	}
	s.inflight++
	go s.hydrate(missing)
}

func (s *CartStore) hydrate(ids []string) {
	logger := zerolog.Ctx(s.ctx).
		With().
		Str(log.KeyTag, "CartStore hydrate").
		Strs(log.KeyProductIDs, ids).
		Logger()
	logger.Debug().Msg("fetching missing products")

	products := make([]domain.Product, len(ids))
	fetched := make([]bool, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			product, err := s.fetch(id)
			if err != nil {
				logger.Warn().Err(err).Str(log.KeyProductID, id).Msg("failed fetching product")
				return
			}
			products[i] = product
			fetched[i] = true
		}()
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := 0
	for i, id := range ids {
		if !fetched[i] {
			continue
		}
		// AddItem may have cached a newer copy while the fetch was in flight.
		if _, cached := s.cache[id]; !cached {
			s.cache[id] = products[i]
			merged++
		}
	}

	s.inflight--
	if s.inflight == 0 {
		close(s.idle)
	}
	logger.Debug().Int("merged", merged).Msg("merged fetched products")
}

// fetch shares one catalog call between every pass asking for productID while
// that call is in flight.
func (s *CartStore) fetch(productID string) (domain.Product, error) {
	ch := s.flight.DoChan(productID, func() (any, error) {
		return s.catalog.GetProduct(s.ctx, productID)
	})
	if s.fetchJoined != nil {
		s.fetchJoined(productID)
	}

	res := <-ch
	if res.Err != nil {
		return domain.Product{}, res.Err
	}
	return res.Val.(domain.Product), nil
}

func (s *CartStore) persistLocked() {
	snapshot := s.state.Clone()
	s.pending = &snapshot
	select {
	case s.persistCh <- struct{}{}:
	default:
	}
}

// persistLoop writes queued snapshots one at a time. Snapshots queued while a
// write is running collapse into the latest one.
func (s *CartStore) persistLoop() {
	defer s.writer.Done()
	for {
		select {
		case <-s.persistCh:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *CartStore) flush() {
	s.mu.Lock()
	state := s.pending
	s.pending = nil
	s.mu.Unlock()

	if state == nil {
		return
	}

	if err := s.storage.SaveCart(s.ctx, *state); err != nil {
		zerolog.Ctx(s.ctx).
			Error().
			Err(err).
			Str(log.KeyTag, "CartStore flush").
			Int(log.KeyCartItems, state.Len()).
			Msg("failed saving cart")
	}
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
