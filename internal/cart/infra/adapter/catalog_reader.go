package adapter

import (
	"context"

	cartdomain "github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/domain"
	catalogapp "github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/catalog/app"
	catalogdomain "github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/catalog/domain"
)

// CatalogReader exposes the catalog cache through the cart engine's ports.
type CatalogReader struct {
	cache *catalogapp.Cache
}

func NewCatalogReader(cache *catalogapp.Cache) *CatalogReader {
	return &CatalogReader{cache: cache}
}

func (r *CatalogReader) Variant(ctx context.Context, variantID string) (cartdomain.ItemMeta, error) {
	v, err := r.cache.Variant(ctx, variantID)
	if err != nil {
		return cartdomain.ItemMeta{}, err
	}
	return toItemMeta(v), nil
}

func (r *CatalogReader) Lookup(variantID string) (cartdomain.ItemMeta, bool) {
	v, ok := r.cache.Lookup(variantID)
	if !ok {
		return cartdomain.ItemMeta{}, false
	}
	return toItemMeta(v), true
}

func toItemMeta(v catalogdomain.Variant) cartdomain.ItemMeta {
	return cartdomain.ItemMeta{
		Name:      v.Name,
		Image:     v.Image,
		UnitPrice: cartdomain.Money{Currency: v.Price.Currency, Amount: v.Price.Amount},
		Stock:     v.Stock,
	}
}

// CouponReader resolves coupon codes against the cached rules. Resolution
// is synchronous and cache-only; codes the cache has not seen simply do
// not resolve.
type CouponReader struct {
	cache *catalogapp.Cache
}

func NewCouponReader(cache *catalogapp.Cache) *CouponReader {
	return &CouponReader{cache: cache}
}

func (r *CouponReader) Resolve(code string, subtotal cartdomain.Money) (cartdomain.Money, bool) {
	coupon, ok := r.cache.LookupCoupon(code)
	if !ok {
		return cartdomain.Money{Currency: subtotal.Currency}, false
	}
	d := coupon.Discount(catalogdomain.Money{Currency: subtotal.Currency, Amount: subtotal.Amount})
	return cartdomain.Money{Currency: d.Currency, Amount: d.Amount}, true
}
