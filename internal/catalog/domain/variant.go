package domain

type Money struct {
	Currency string
	Amount   int64
}

// Variant is one purchasable SKU of a product, as the storefront catalog
// describes it.
type Variant struct {
	ID        string
	ProductID string
	Name      string
	Image     string
	Price     Money
	Stock     int32
}
