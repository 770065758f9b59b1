package domain

// Coupon is a storefront discount rule. Either PercentOff or AmountOff is
// set, never both.
type Coupon struct {
	Code        string
	PercentOff  int32
	AmountOff   int64
	MinSubtotal int64
}

// Discount computes the coupon's value against a subtotal, zero when the
// minimum is not met. The result is never negative and never exceeds the
// subtotal.
func (c Coupon) Discount(subtotal Money) Money {
	out := Money{Currency: subtotal.Currency}
	if subtotal.Amount < c.MinSubtotal {
		return out
	}

	switch {
	case c.PercentOff > 0:
		out.Amount = subtotal.Amount * int64(c.PercentOff) / 100
	case c.AmountOff > 0:
		out.Amount = c.AmountOff
	}

	if out.Amount > subtotal.Amount {
		out.Amount = subtotal.Amount
	}
	if out.Amount < 0 {
		out.Amount = 0
	}
	return out
}
