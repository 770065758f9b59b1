package app

import (
	"context"

	"github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/domain"
)

// CartStore persists the device-local cart. Read treats a missing or
// corrupt payload as an empty cart; an error means the store itself is
// unusable, not that there is no cart.
type CartStore interface {
	Read(ctx context.Context) (domain.Cart, error)
	Write(ctx context.Context, cart domain.Cart) error
	Clear(ctx context.Context) error
}

// RemoteCart is the storefront's server-side cart for the signed-in
// session. All calls are best effort; errors are treated as "offline".
type RemoteCart interface {
	Get(ctx context.Context) (domain.Cart, error)
	SetItem(ctx context.Context, variantID string, quantity int32) error
	RemoveItem(ctx context.Context, variantID string) error
	// Replace pushes the full local item list in one shot. Used for the
	// teardown flush, where no acknowledgement is awaited.
	Replace(ctx context.Context, items []domain.CartItem) error
}

// Catalog resolves variant metadata, reading through to the storefront
// when the cache is cold.
type Catalog interface {
	Variant(ctx context.Context, variantID string) (domain.ItemMeta, error)
	domain.MetaLookup
}
