package domain

import "time"

type Money struct {
	Currency string
	Amount   int64
}

// CartItem is one line of the on-device cart. Display fields and the
// stock count are denormalized snapshots taken when the item was last
// added, so the cart stays renderable even when the catalog cache is cold.
type CartItem struct {
	VariantID string
	Name      string
	Image     string
	UnitPrice Money
	Stock     int32
	Quantity  int32
}

// Cart is the device-local cart. Items are ordered by insertion and
// unique by VariantID.
type Cart struct {
	Items        []CartItem
	CouponCode   string
	LastModified time.Time
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Find returns the index of the item holding variantID, or -1.
func (c Cart) Find(variantID string) int {
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

// Clone deep-copies the cart so mutator functions can stay pure.
func (c Cart) Clone() Cart {
	out := c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

func (c Cart) VariantIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.VariantID)
	}
	return ids
}
