package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
)

func writeConfig(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/products/p1":
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    domain.Product{ID: "p1", Name: "Mug", Price: domain.NewPrice(12, "USD")},
			})
		case r.URL.Path == "/categories":
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    []domain.Category{{ID: "c1", Slug: "kitchen", Name: "Kitchen"}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	path := filepath.Join(dir, "storefront.yaml")
	content := fmt.Sprintf(`
log:
  level: error
api:
  base_url: %s
storage:
  driver: sqlite
  sqlite:
    path: %s
`, srv.URL, filepath.Join(dir, "cart.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCartCommands(t *testing.T) {
	configPath := writeConfig(t)

	out, err := run(t, configPath, "cart", "add", "p1", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Mug to cart")
	assert.Contains(t, out, "24.00 USD")

	out, err = run(t, configPath, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Mug")
	assert.Contains(t, out, "Items:    2")

	out, err = run(t, configPath, "cart", "update", "p1", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Total:    60.00 USD")

	out, err = run(t, configPath, "cart", "remove", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed Mug from cart")
	assert.Contains(t, out, "Cart is empty")
}

func TestCartAddRejectsBadQuantity(t *testing.T) {
	configPath := writeConfig(t)

	_, err := run(t, configPath, "cart", "add", "p1", "many")
	assert.Error(t, err)
}

func TestCategoriesList(t *testing.T) {
	configPath := writeConfig(t)

	out, err := run(t, configPath, "categories", "list")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, `"slug": "kitchen"`), out)
}

func TestCheckoutWithEmptyCart(t *testing.T) {
	configPath := writeConfig(t)

	out, err := run(t, configPath, "checkout",
		"--name", "Ada", "--email", "ada@example.com", "--address", "1 Road",
		"--city", "London", "--postal-code", "N1", "--country", "UK")
	assert.Error(t, err)
	assert.Contains(t, out, "Your cart is empty")
}
