package domain

import "testing"

func metaWithStock(stock int32) ItemMeta {
	return ItemMeta{
		Name:      "Lace Front Bob",
		Image:     "bob.jpg",
		UnitPrice: Money{Currency: "USD", Amount: 12999},
		Stock:     stock,
	}
}

func TestAddItem(t *testing.T) {
	t.Run("request above stock is capped", func(t *testing.T) {
		res := AddItem(Cart{}, "v1", 5, metaWithStock(3))
		if got := res.Cart.Items[0].Quantity; got != 3 {
			t.Fatalf("quantity = %d, want 3", got)
		}
		if res.CappedQty != 3 || !res.WasLimited {
			t.Fatalf("got capped=%d limited=%v", res.CappedQty, res.WasLimited)
		}
	})

	t.Run("existing line increments up to stock", func(t *testing.T) {
		res := AddItem(Cart{}, "v1", 2, metaWithStock(3))
		res = AddItem(res.Cart, "v1", 2, metaWithStock(3))
		if got := res.Cart.Items[0].Quantity; got != 3 {
			t.Fatalf("quantity = %d, want 3", got)
		}
		if res.CappedQty != 1 || !res.WasLimited {
			t.Fatalf("got capped=%d limited=%v", res.CappedQty, res.WasLimited)
		}
	})

	t.Run("zero stock adds nothing", func(t *testing.T) {
		res := AddItem(Cart{}, "v1", 2, metaWithStock(0))
		if !res.Cart.IsEmpty() {
			t.Fatalf("expected empty cart, got %+v", res.Cart.Items)
		}
		if res.CappedQty != 0 || !res.WasLimited {
			t.Fatalf("got capped=%d limited=%v", res.CappedQty, res.WasLimited)
		}
	})

	t.Run("negative request treated as zero", func(t *testing.T) {
		res := AddItem(Cart{}, "v1", -4, metaWithStock(3))
		if !res.Cart.IsEmpty() || res.WasLimited {
			t.Fatalf("expected no-op, got items=%d limited=%v", len(res.Cart.Items), res.WasLimited)
		}
	})

	t.Run("stock drop shrinks the line", func(t *testing.T) {
		res := AddItem(Cart{}, "v1", 5, metaWithStock(5))
		res = AddItem(res.Cart, "v1", 1, metaWithStock(2))
		if got := res.Cart.Items[0].Quantity; got != 2 {
			t.Fatalf("quantity = %d, want 2", got)
		}
		if res.CappedQty != 0 || !res.WasLimited {
			t.Fatalf("got capped=%d limited=%v", res.CappedQty, res.WasLimited)
		}
	})

	t.Run("input cart is not mutated", func(t *testing.T) {
		orig := AddItem(Cart{}, "v1", 1, metaWithStock(9)).Cart
		AddItem(orig, "v1", 5, metaWithStock(9))
		if got := orig.Items[0].Quantity; got != 1 {
			t.Fatalf("original cart mutated: quantity = %d", got)
		}
	})
}

func TestSetItemQuantity(t *testing.T) {
	base := AddItem(Cart{}, "v1", 2, metaWithStock(4)).Cart

	t.Run("clamps to stock", func(t *testing.T) {
		res := SetItemQuantity(base, "v1", 10)
		if res.ActualQty != 4 || !res.WasLimited {
			t.Fatalf("got qty=%d limited=%v", res.ActualQty, res.WasLimited)
		}
	})

	t.Run("zero removes the line", func(t *testing.T) {
		res := SetItemQuantity(base, "v1", 0)
		if !res.Cart.IsEmpty() {
			t.Fatalf("expected empty cart, got %+v", res.Cart.Items)
		}
	})

	t.Run("negative removes the line", func(t *testing.T) {
		res := SetItemQuantity(base, "v1", -3)
		if !res.Cart.IsEmpty() || res.WasLimited {
			t.Fatalf("got items=%d limited=%v", len(res.Cart.Items), res.WasLimited)
		}
	})

	t.Run("absent variant is a no-op", func(t *testing.T) {
		res := SetItemQuantity(base, "missing", 2)
		if len(res.Cart.Items) != 1 || res.Cart.Items[0].Quantity != 2 {
			t.Fatalf("cart changed: %+v", res.Cart.Items)
		}
	})
}

func TestRemoveItem(t *testing.T) {
	base := AddItem(Cart{}, "v1", 2, metaWithStock(4)).Cart

	t.Run("removes the line", func(t *testing.T) {
		if got := RemoveItem(base, "v1"); !got.IsEmpty() {
			t.Fatalf("expected empty cart, got %+v", got.Items)
		}
	})

	t.Run("idempotent on absent variant", func(t *testing.T) {
		once := RemoveItem(base, "v1")
		twice := RemoveItem(once, "v1")
		if len(once.Items) != len(twice.Items) {
			t.Fatalf("second removal changed the cart")
		}
	})
}

func TestStockCeilingInvariant(t *testing.T) {
	// Arbitrary op sequence: quantity must never exceed the last stock seen.
	cart := Cart{}
	steps := []struct {
		op    string
		qty   int32
		stock int32
	}{
		{"add", 3, 5},
		{"add", 9, 5},
		{"set", 4, 0},
		{"add", 2, 2},
		{"set", 99, 0},
		{"add", 1, 7},
	}
	for i, s := range steps {
		switch s.op {
		case "add":
			cart = AddItem(cart, "v1", s.qty, metaWithStock(s.stock)).Cart
		case "set":
			cart = SetItemQuantity(cart, "v1", s.qty).Cart
		}
		if idx := cart.Find("v1"); idx >= 0 {
			if q, max := cart.Items[idx].Quantity, cart.Items[idx].Stock; q > max {
				t.Fatalf("step %d: quantity %d exceeds stock %d", i, q, max)
			}
		}
	}
}
