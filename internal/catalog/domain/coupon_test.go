package domain

import "testing"

func TestCouponDiscount(t *testing.T) {
	usd := func(amount int64) Money { return Money{Currency: "USD", Amount: amount} }

	t.Run("percent off", func(t *testing.T) {
		c := Coupon{Code: "SAVE10", PercentOff: 10}
		if got := c.Discount(usd(5000)); got.Amount != 500 {
			t.Fatalf("discount = %d, want 500", got.Amount)
		}
	})

	t.Run("amount off", func(t *testing.T) {
		c := Coupon{Code: "FLAT5", AmountOff: 500}
		if got := c.Discount(usd(5000)); got.Amount != 500 {
			t.Fatalf("discount = %d, want 500", got.Amount)
		}
	})

	t.Run("below minimum subtotal", func(t *testing.T) {
		c := Coupon{Code: "BIGSPEND", PercentOff: 20, MinSubtotal: 10000}
		if got := c.Discount(usd(5000)); got.Amount != 0 {
			t.Fatalf("discount = %d, want 0", got.Amount)
		}
	})

	t.Run("never exceeds subtotal", func(t *testing.T) {
		c := Coupon{Code: "HUGE", AmountOff: 99999}
		if got := c.Discount(usd(100)); got.Amount != 100 {
			t.Fatalf("discount = %d, want 100", got.Amount)
		}
	})
}
