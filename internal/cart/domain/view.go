package domain

// ViewItem is a cart line enriched for rendering. Stale marks lines whose
// variant is missing from the metadata cache; they render from the
// denormalized snapshot instead of being dropped.
type ViewItem struct {
	CartItem
	Subtotal Money
	Stale    bool
}

// CartView is the full, UI-ready cart. It is a pure projection of a Cart
// plus catalog metadata and is recomputed on every read.
type CartView struct {
	Items         []ViewItem
	ItemsCount    int32
	Subtotal      Money
	Discount      Money
	Total         Money
	CouponCode    string
	CouponApplied bool
}

// MetaLookup is a synchronous, cache-only variant lookup. A miss is
// reported through the bool, never through an error.
type MetaLookup interface {
	Lookup(variantID string) (ItemMeta, bool)
}

// CouponResolver turns a coupon code into a discount against a subtotal.
// Unresolvable codes report false and a zero discount.
type CouponResolver interface {
	Resolve(code string, subtotal Money) (Money, bool)
}

// Project derives the renderable cart. Lines with cached metadata use the
// fresh unit price; lines without fall back to their snapshot and are
// marked stale. Deterministic for fixed inputs.
func Project(cart Cart, meta MetaLookup, coupons CouponResolver) CartView {
	view := CartView{
		Items:      make([]ViewItem, 0, len(cart.Items)),
		CouponCode: cart.CouponCode,
	}

	for _, it := range cart.Items {
		line := ViewItem{CartItem: it}
		if meta != nil {
			if m, ok := meta.Lookup(it.VariantID); ok {
				line.Name = m.Name
				line.Image = m.Image
				line.UnitPrice = m.UnitPrice
				line.Stock = m.Stock
			} else {
				line.Stale = true
			}
		} else {
			line.Stale = true
		}

		line.Subtotal = Money{
			Currency: line.UnitPrice.Currency,
			Amount:   line.UnitPrice.Amount * int64(line.Quantity),
		}

		view.Items = append(view.Items, line)
		view.ItemsCount += it.Quantity
		view.Subtotal.Amount += line.Subtotal.Amount
		if view.Subtotal.Currency == "" {
			view.Subtotal.Currency = line.Subtotal.Currency
		}
	}

	view.Discount = Money{Currency: view.Subtotal.Currency}
	if cart.CouponCode != "" && coupons != nil {
		if d, ok := coupons.Resolve(cart.CouponCode, view.Subtotal); ok {
			if d.Amount > view.Subtotal.Amount {
				d.Amount = view.Subtotal.Amount
			}
			view.Discount.Amount = d.Amount
			view.CouponApplied = true
		}
	}

	view.Total = Money{
		Currency: view.Subtotal.Currency,
		Amount:   view.Subtotal.Amount - view.Discount.Amount,
	}
	return view
}
