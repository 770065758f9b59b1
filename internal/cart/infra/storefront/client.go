package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/domain"
)

// Client talks to the storefront's cart API. Every call is expected to be
// treated as best effort by the caller; this client only reports errors,
// it never retries.
type Client struct {
	base   string
	http   *http.Client
	beacon *http.Client
	token  func() string
}

func NewClient(baseURL string, token func() string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
		// The teardown flush must never hold the agent hostage.
		beacon: &http.Client{Timeout: 2 * time.Second},
		token:  token,
	}
}

type wireItem struct {
	VariantID  string `json:"variantId"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	UnitAmount int64  `json:"unitAmount"`
	Currency   string `json:"currency"`
	Stock      int32  `json:"stockAvailable"`
	Quantity   int32  `json:"quantity"`
}

type wireCart struct {
	Items      []wireItem `json:"items"`
	CouponCode string     `json:"couponCode"`
}

func (c *Client) Get(ctx context.Context) (domain.Cart, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/cart", nil)
	if err != nil {
		return domain.Cart{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("fetch remote cart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Cart{}, fmt.Errorf("fetch remote cart: status %d", resp.StatusCode)
	}

	var wc wireCart
	if err := json.NewDecoder(resp.Body).Decode(&wc); err != nil {
		return domain.Cart{}, fmt.Errorf("decode remote cart: %w", err)
	}

	cart := domain.Cart{CouponCode: wc.CouponCode}
	for _, it := range wc.Items {
		cart.Items = append(cart.Items, domain.CartItem{
			VariantID: it.VariantID,
			Name:      it.Name,
			Image:     it.Image,
			UnitPrice: domain.Money{Currency: it.Currency, Amount: it.UnitAmount},
			Stock:     it.Stock,
			Quantity:  it.Quantity,
		})
	}
	return cart, nil
}

func (c *Client) SetItem(ctx context.Context, variantID string, quantity int32) error {
	body := map[string]int32{"quantity": quantity}
	req, err := c.newRequest(ctx, http.MethodPut, "/api/cart/items/"+variantID, body)
	if err != nil {
		return err
	}
	return c.do(c.http, req, "push cart item "+variantID)
}

func (c *Client) RemoveItem(ctx context.Context, variantID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/cart/items/"+variantID, nil)
	if err != nil {
		return err
	}
	return c.do(c.http, req, "remove cart item "+variantID)
}

// Replace ships the full item list in one request over the short-timeout
// client. The response body is discarded; the caller does not wait on any
// acknowledgement beyond the status line.
func (c *Client) Replace(ctx context.Context, items []domain.CartItem) error {
	wc := wireCart{Items: make([]wireItem, 0, len(items))}
	for _, it := range items {
		wc.Items = append(wc.Items, wireItem{
			VariantID:  it.VariantID,
			Name:       it.Name,
			Image:      it.Image,
			UnitAmount: it.UnitPrice.Amount,
			Currency:   it.UnitPrice.Currency,
			Stock:      it.Stock,
			Quantity:   it.Quantity,
		})
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/api/cart", wc)
	if err != nil {
		return err
	}
	return c.do(c.beacon, req, "replace remote cart")
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

func (c *Client) do(hc *http.Client, req *http.Request, what string) error {
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: status %d", what, resp.StatusCode)
	}
	return nil
}
