package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/app"
	"github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/domain"
	"golang.org/x/sync/errgroup"
)

type memStore struct {
	mu   sync.Mutex
	cart domain.Cart
}

func (m *memStore) Read(ctx context.Context) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Clone(), nil
}

func (m *memStore) Write(ctx context.Context, cart domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = cart.Clone()
	return nil
}

func (m *memStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = domain.Cart{}
	return nil
}

type nullRemote struct{}

func (nullRemote) Get(ctx context.Context) (domain.Cart, error) { return domain.Cart{}, nil }
func (nullRemote) SetItem(ctx context.Context, variantID string, quantity int32) error {
	return nil
}
func (nullRemote) RemoveItem(ctx context.Context, variantID string) error     { return nil }
func (nullRemote) Replace(ctx context.Context, items []domain.CartItem) error { return nil }

type staticCatalog domain.ItemMeta

func (c staticCatalog) Variant(ctx context.Context, variantID string) (domain.ItemMeta, error) {
	return domain.ItemMeta(c), nil
}

func (c staticCatalog) Lookup(variantID string) (domain.ItemMeta, bool) {
	return domain.ItemMeta(c), true
}

func newConcurrencyService(stock int32) *app.Service {
	catalog := staticCatalog(domain.ItemMeta{
		Name:      "Wavy Wig",
		UnitPrice: domain.Money{Currency: "USD", Amount: 7500},
		Stock:     stock,
	})
	return app.NewService(&memStore{}, nullRemote{}, catalog, nil, app.Options{
		Debounce:    time.Millisecond,
		PushTimeout: time.Second,
	})
}

func TestConcurrentAddItemIncrement(t *testing.T) {
	ctx := context.Background()
	svc := newConcurrencyService(1000)

	const N = 100
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, err := svc.AddItem(ctx, "wig-wavy", 1)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent AddItem failed: %v", err)
	}

	view := svc.Cart(ctx)
	if len(view.Items) != 1 {
		t.Fatalf("expected a single line, got %d", len(view.Items))
	}
	if got := view.Items[0].Quantity; got != N {
		t.Fatalf("expected quantity=%d, got=%d", N, got)
	}
}

func TestConcurrentAddsNeverExceedStock(t *testing.T) {
	ctx := context.Background()
	const stock = 7
	svc := newConcurrencyService(stock)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			_, err := svc.AddItem(ctx, "wig-wavy", 3)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent AddItem failed: %v", err)
	}

	view := svc.Cart(ctx)
	if got := view.Items[0].Quantity; got != stock {
		t.Fatalf("expected quantity clamped to %d, got %d", stock, got)
	}
}
