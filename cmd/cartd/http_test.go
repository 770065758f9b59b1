package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	cartapp "github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/app"
	cartdomain "github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/domain"
	"github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/infra/adapter"
	catalogapp "github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/catalog/app"
	catalogdomain "github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/catalog/domain"
)

type memStore struct {
	mu   sync.Mutex
	cart cartdomain.Cart
}

func (m *memStore) Read(ctx context.Context) (cartdomain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Clone(), nil
}

func (m *memStore) Write(ctx context.Context, cart cartdomain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = cart.Clone()
	return nil
}

func (m *memStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = cartdomain.Cart{}
	return nil
}

type nullRemote struct{}

func (nullRemote) Get(ctx context.Context) (cartdomain.Cart, error) { return cartdomain.Cart{}, nil }
func (nullRemote) SetItem(ctx context.Context, variantID string, quantity int32) error {
	return nil
}
func (nullRemote) RemoveItem(ctx context.Context, variantID string) error { return nil }
func (nullRemote) Replace(ctx context.Context, items []cartdomain.CartItem) error {
	return nil
}

type staticSource struct{}

func (staticSource) Variant(ctx context.Context, id string) (catalogdomain.Variant, error) {
	if id != "wig-bob-black" {
		return catalogdomain.Variant{}, catalogapp.ErrNotFound
	}
	return catalogdomain.Variant{
		ID:    id,
		Name:  "Bob",
		Price: catalogdomain.Money{Currency: "USD", Amount: 9900},
		Stock: 3,
	}, nil
}

func (staticSource) Coupon(ctx context.Context, code string) (catalogdomain.Coupon, error) {
	if code != "SAVE10" {
		return catalogdomain.Coupon{}, catalogapp.ErrNotFound
	}
	return catalogdomain.Coupon{Code: code, PercentOff: 10}, nil
}

func newTestServer(t *testing.T) *server {
	t.Helper()
	cache := catalogapp.NewCache(staticSource{}, time.Minute, nil)
	svc := cartapp.NewService(&memStore{}, nullRemote{}, adapter.NewCatalogReader(cache),
		adapter.NewCouponReader(cache), cartapp.Options{Debounce: time.Millisecond})
	return newServer(svc, cache, nil)
}

func TestCartEndpoints(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	do := func(method, path, body string) (*http.Response, []byte) {
		t.Helper()
		req, _ := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		defer resp.Body.Close()
		buf, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		return resp, buf
	}

	t.Run("add beyond stock is capped", func(t *testing.T) {
		resp, body := do(http.MethodPost, "/cart/items", `{"variantId":"wig-bob-black","quantity":5}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, body)
		}
		var out mutationJSON
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.Quantity != 3 || !out.WasLimited {
			t.Fatalf("got quantity=%d limited=%v", out.Quantity, out.WasLimited)
		}
		if out.Cart.ItemsCount != 3 {
			t.Fatalf("items count = %d", out.Cart.ItemsCount)
		}
	})

	t.Run("unknown variant is 404", func(t *testing.T) {
		resp, body := do(http.MethodPost, "/cart/items", `{"variantId":"ghost","quantity":1}`)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status %d: %s", resp.StatusCode, body)
		}
		var e errBody
		if err := json.Unmarshal(body, &e); err != nil || e.Error.Code != "NOT_FOUND" {
			t.Fatalf("envelope: %s", body)
		}
	})

	t.Run("coupon applies to the view", func(t *testing.T) {
		resp, body := do(http.MethodPut, "/cart/coupon", `{"code":"SAVE10"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, body)
		}
		var view cartViewJSON
		if err := json.Unmarshal(body, &view); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !view.CouponApplied || view.Discount.Amount != 2970 {
			t.Fatalf("applied=%v discount=%d", view.CouponApplied, view.Discount.Amount)
		}
	})

	t.Run("set quantity then read back", func(t *testing.T) {
		resp, _ := do(http.MethodPut, "/cart/items/wig-bob-black", `{"quantity":1}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d", resp.StatusCode)
		}
		resp, body := do(http.MethodGet, "/cart", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d", resp.StatusCode)
		}
		var view cartViewJSON
		if err := json.Unmarshal(body, &view); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if view.ItemsCount != 1 {
			t.Fatalf("items count = %d", view.ItemsCount)
		}
	})

	t.Run("remove item", func(t *testing.T) {
		resp, body := do(http.MethodDelete, "/cart/items/wig-bob-black", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d", resp.StatusCode)
		}
		var view cartViewJSON
		if err := json.Unmarshal(body, &view); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(view.Items) != 0 {
			t.Fatalf("cart not empty: %s", body)
		}
	})

	t.Run("session sign-in requires a token", func(t *testing.T) {
		resp, _ := do(http.MethodPost, "/session", `{}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status %d", resp.StatusCode)
		}
		resp, _ = do(http.MethodPost, "/session", `{"token":"tok"}`)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("status %d", resp.StatusCode)
		}
		resp, _ = do(http.MethodDelete, "/session", "")
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("status %d", resp.StatusCode)
		}
	})
}
