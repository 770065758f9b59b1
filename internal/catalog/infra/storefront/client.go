package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/catalog/app"
	"github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/catalog/domain"
)

// Client reads variant metadata and coupon rules from the storefront
// catalog API.
type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type wireVariant struct {
	ID         string `json:"id"`
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	UnitAmount int64  `json:"unitAmount"`
	Currency   string `json:"currency"`
	Stock      int32  `json:"stockAvailable"`
}

type wireCoupon struct {
	Code        string `json:"code"`
	PercentOff  int32  `json:"percentOff"`
	AmountOff   int64  `json:"amountOff"`
	MinSubtotal int64  `json:"minSubtotal"`
}

func (c *Client) Variant(ctx context.Context, variantID string) (domain.Variant, error) {
	var wv wireVariant
	if err := c.getJSON(ctx, "/api/variants/"+variantID, &wv); err != nil {
		return domain.Variant{}, err
	}
	return domain.Variant{
		ID:        wv.ID,
		ProductID: wv.ProductID,
		Name:      wv.Name,
		Image:     wv.Image,
		Price:     domain.Money{Currency: wv.Currency, Amount: wv.UnitAmount},
		Stock:     wv.Stock,
	}, nil
}

func (c *Client) Coupon(ctx context.Context, code string) (domain.Coupon, error) {
	var wc wireCoupon
	if err := c.getJSON(ctx, "/api/coupons/"+code, &wc); err != nil {
		return domain.Coupon{}, err
	}
	return domain.Coupon{
		Code:        wc.Code,
		PercentOff:  wc.PercentOff,
		AmountOff:   wc.AmountOff,
		MinSubtotal: wc.MinSubtotal,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("build GET %s: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return app.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
