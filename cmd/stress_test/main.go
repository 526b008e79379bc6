package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/log"
)

const (
	keyPrefix = "storefront:stress:"
	cartKey   = "cart"
)

// slowCatalog answers every product lookup after a fixed delay so hydration
// passes overlap with concurrent mutations.
type slowCatalog struct {
	delay time.Duration
	calls atomic.Int32
}

func (c *slowCatalog) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	c.calls.Add(1)
	select {
	case <-time.After(c.delay):
	case <-ctx.Done():
		return domain.Product{}, ctx.Err()
	}
	return domain.Product{ID: productID, Name: "Product " + productID, Price: domain.NewPrice(10, domain.DefaultCurrency)}, nil
}

type options struct {
	redisAddr string
	products  int
	requests  int
}

func parseFlags(args []string) (options, error) {
	var opts options
	flags := pflag.NewFlagSet("stress_test", pflag.ContinueOnError)
	flags.StringVar(&opts.redisAddr, "redis", "localhost:6379", "redis address")
	flags.IntVarP(&opts.products, "products", "p", 20, "distinct products")
	flags.IntVarP(&opts.requests, "requests", "n", 1000, "concurrent add-to-cart calls")
	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	if opts.products < 1 || opts.requests < 1 {
		return options{}, fmt.Errorf("products and requests must be positive, got %d and %d", opts.products, opts.requests)
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := log.InitLogger(log.Options{Level: "warn"})
	ctx := logger.WithContext(context.Background())

	rdb := redis.NewClient(&redis.Options{Addr: opts.redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer rdb.Close()

	rdb.Del(ctx, keyPrefix+cartKey)

	// Seed a persisted cart so the store starts with a hydration pass that
	// overlaps the concurrent adds below.
	adapter := storage.NewRedisAdapter(rdb, keyPrefix, cartKey)
	seed := domain.NewCartState()
	for i := 0; i < opts.products; i++ {
		seed.Add(fmt.Sprintf("seed-%d", i), 1)
	}
	if err := adapter.SaveCart(ctx, seed); err != nil {
		logger.Fatal().Err(err).Msg("failed seeding cart")
	}

	catalog := &slowCatalog{delay: 20 * time.Millisecond}
	cart := service.NewCartStore(ctx, catalog, adapter, nil)

	var failCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < opts.requests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			id := fmt.Sprintf("sku-%d", n%opts.products)
			product := domain.Product{ID: id, Name: "Product " + id, Price: domain.NewPrice(10, domain.DefaultCurrency)}
			if err := cart.AddItem(product, 1); err != nil {
				failCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := cart.Wait(waitCtx); err != nil {
		logger.Error().Err(err).Msg("hydration did not settle")
	}
	if err := cart.Close(waitCtx); err != nil {
		logger.Error().Err(err).Msg("failed flushing cart")
	}
	elapsed := time.Since(start)

	persisted, err := adapter.LoadCart(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed reading persisted cart")
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Distinct Products: %d\n", opts.products)
	fmt.Printf("Total Requests:    %d\n", opts.requests)
	fmt.Printf("Failed:            %d\n", failCount.Load())
	fmt.Printf("Catalog Lookups:   %d\n", catalog.calls.Load())
	fmt.Printf("Duration:          %v\n", elapsed)
	fmt.Println("==========================================")

	ok := true
	check := func(name string, got, want int) {
		if got == want {
			fmt.Printf("PASS: %s = %d\n", name, got)
			return
		}
		fmt.Printf("FAIL: %s expected %d, got %d\n", name, want, got)
		ok = false
	}

	lines := opts.products + min(opts.products, opts.requests)
	check("in-memory total items", cart.TotalItems(), opts.products+opts.requests)
	check("persisted total items", persisted.TotalQuantity(), opts.products+opts.requests)
	check("persisted distinct lines", persisted.Len(), lines)
	check("hydrated lines", len(cart.Items()), lines)

	if !ok {
		logger.Error().Msg("stress test failed")
		os.Exit(1)
	}
}
