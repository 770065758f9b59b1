package app

import (
	"context"

	"github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/catalog/domain"
)

type VariantSource interface {
	Variant(ctx context.Context, variantID string) (domain.Variant, error)
	Coupon(ctx context.Context, code string) (domain.Coupon, error)
}
