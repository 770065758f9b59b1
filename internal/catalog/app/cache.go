package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type variantEntry struct {
	variant   domain.Variant
	fetchedAt time.Time
}

type couponEntry struct {
	coupon    domain.Coupon
	fetchedAt time.Time
}

// Cache is the read-through variant metadata cache feeding the cart
// engine. Synchronous lookups serve whatever is cached, fresh or not, so
// the cart can always render; freshness only gates whether a read-through
// goes back to the storefront.
type Cache struct {
	src VariantSource
	log *slog.Logger
	ttl time.Duration

	mu       sync.RWMutex
	variants map[string]variantEntry
	coupons  map[string]couponEntry
}

const (
	defaultTTL      = time.Minute
	refreshParallel = 8
)

func NewCache(src VariantSource, ttl time.Duration, log *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		src:      src,
		log:      log,
		ttl:      ttl,
		variants: make(map[string]variantEntry),
		coupons:  make(map[string]couponEntry),
	}
}

// Variant resolves a variant, hitting the storefront when the cached copy
// is missing or expired. A fetch failure falls back to an expired cached
// copy when one exists.
func (c *Cache) Variant(ctx context.Context, variantID string) (domain.Variant, error) {
	variantID = strings.TrimSpace(variantID)
	if variantID == "" {
		return domain.Variant{}, ErrInvalidInput
	}

	c.mu.RLock()
	entry, ok := c.variants[variantID]
	c.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < c.ttl {
		return entry.variant, nil
	}

	v, err := c.src.Variant(ctx, variantID)
	if err != nil {
		if ok {
			c.log.Debug("variant refetch failed, serving cached copy",
				slog.String("variant_id", variantID), slog.Any("err", err))
			return entry.variant, nil
		}
		return domain.Variant{}, err
	}

	c.mu.Lock()
	c.variants[variantID] = variantEntry{variant: v, fetchedAt: time.Now()}
	c.mu.Unlock()
	return v, nil
}

// Lookup is the synchronous, cache-only read used by the projector.
func (c *Cache) Lookup(variantID string) (domain.Variant, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.variants[variantID]
	return entry.variant, ok
}

// Refresh refetches a set of variants in parallel. Individual failures
// are collected but do not stop the rest.
func (c *Cache) Refresh(ctx context.Context, variantIDs []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshParallel)

	for _, id := range variantIDs {
		id := id
		g.Go(func() error {
			v, err := c.src.Variant(ctx, id)
			if err != nil {
				c.log.Debug("variant refresh failed",
					slog.String("variant_id", id), slog.Any("err", err))
				return nil
			}
			c.mu.Lock()
			c.variants[id] = variantEntry{variant: v, fetchedAt: time.Now()}
			c.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// Coupon resolves a coupon rule, read-through like Variant.
func (c *Cache) Coupon(ctx context.Context, code string) (domain.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Coupon{}, ErrInvalidInput
	}

	c.mu.RLock()
	entry, ok := c.coupons[code]
	c.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < c.ttl {
		return entry.coupon, nil
	}

	coupon, err := c.src.Coupon(ctx, code)
	if err != nil {
		if ok {
			return entry.coupon, nil
		}
		return domain.Coupon{}, err
	}

	c.mu.Lock()
	c.coupons[code] = couponEntry{coupon: coupon, fetchedAt: time.Now()}
	c.mu.Unlock()
	return coupon, nil
}

// LookupCoupon is the cache-only coupon read used at projection time.
func (c *Cache) LookupCoupon(code string) (domain.Coupon, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.coupons[code]
	return entry.coupon, ok
}
