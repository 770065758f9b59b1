package domain

// ItemMeta is the catalog snapshot needed to add a variant to the cart.
type ItemMeta struct {
	Name      string
	Image     string
	UnitPrice Money
	Stock     int32
}

type AddResult struct {
	Cart       Cart
	CappedQty  int32
	WasLimited bool
}

type SetResult struct {
	Cart       Cart
	ActualQty  int32
	WasLimited bool
}

// AddItem adds requested units of variantID, never letting the resulting
// quantity exceed the stock reported by meta. Running into the ceiling is
// a policy outcome, not an error: CappedQty is how many units actually
// went in (possibly 0) and WasLimited reports whether the request was cut.
// The item's display snapshot is refreshed from meta on every add.
func AddItem(cart Cart, variantID string, requested int32, meta ItemMeta) AddResult {
	if requested < 0 {
		requested = 0
	}

	next := cart.Clone()
	idx := next.Find(variantID)

	if idx < 0 {
		qty := requested
		if qty > meta.Stock {
			qty = meta.Stock
		}
		if qty < 0 {
			qty = 0
		}
		if qty > 0 {
			next.Items = append(next.Items, CartItem{
				VariantID: variantID,
				Name:      meta.Name,
				Image:     meta.Image,
				UnitPrice: meta.UnitPrice,
				Stock:     meta.Stock,
				Quantity:  qty,
			})
		}
		return AddResult{
			Cart:       next,
			CappedQty:  qty,
			WasLimited: qty != requested,
		}
	}

	existing := next.Items[idx].Quantity
	newQty := existing + requested
	if newQty > meta.Stock {
		newQty = meta.Stock
	}

	added := newQty - existing
	if added < 0 {
		// Stock dropped below what is already in the cart; the ceiling
		// shrinks the line rather than adding to it.
		added = 0
	}

	next.Items[idx].Name = meta.Name
	next.Items[idx].Image = meta.Image
	next.Items[idx].UnitPrice = meta.UnitPrice
	next.Items[idx].Stock = meta.Stock
	next.Items[idx].Quantity = newQty

	return AddResult{
		Cart:       next,
		CappedQty:  added,
		WasLimited: added != requested,
	}
}

// SetItemQuantity clamps requested to [0, stock snapshot] and applies it.
// Clamping to 0, or passing a negative quantity, removes the line. Setting
// a variant that is not in the cart is a no-op.
func SetItemQuantity(cart Cart, variantID string, requested int32) SetResult {
	limited := false
	if requested < 0 {
		requested = 0
	}

	next := cart.Clone()
	idx := next.Find(variantID)
	if idx < 0 {
		return SetResult{Cart: next}
	}

	qty := requested
	if ceil := next.Items[idx].Stock; qty > ceil {
		qty = ceil
		limited = true
	}

	if qty == 0 {
		next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	} else {
		next.Items[idx].Quantity = qty
	}

	return SetResult{
		Cart:       next,
		ActualQty:  qty,
		WasLimited: limited,
	}
}

// RemoveItem drops variantID from the cart. Removing an absent variant
// is a no-op.
func RemoveItem(cart Cart, variantID string) Cart {
	next := cart.Clone()
	idx := next.Find(variantID)
	if idx < 0 {
		return next
	}
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	return next
}
