package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	cartapp "github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/app"
	"github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/domain"
	catalogapp "github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/catalog/app"
)

type server struct {
	svc   *cartapp.Service
	cache *catalogapp.Cache
	log   *slog.Logger
	token atomic.Value
}

func newServer(svc *cartapp.Service, cache *catalogapp.Cache, log *slog.Logger) *server {
	if log == nil {
		log = slog.Default()
	}
	s := &server{svc: svc, cache: cache, log: log}
	s.token.Store("")
	return s
}

func (s *server) sessionToken() string {
	return s.token.Load().(string)
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	mux.HandleFunc("GET /cart", s.handleGetCart)
	mux.HandleFunc("POST /cart/items", s.handleAddItem)
	mux.HandleFunc("PUT /cart/items/{variantId}", s.handleSetQuantity)
	mux.HandleFunc("DELETE /cart/items/{variantId}", s.handleRemoveItem)
	mux.HandleFunc("PUT /cart/coupon", s.handleSetCoupon)
	mux.HandleFunc("POST /session", s.handleSignIn)
	mux.HandleFunc("DELETE /session", s.handleLogout)
	return mux
}

type moneyJSON struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

type cartItemJSON struct {
	VariantID string    `json:"variantId"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	UnitPrice moneyJSON `json:"unitPrice"`
	Quantity  int32     `json:"quantity"`
	Subtotal  moneyJSON `json:"subtotal"`
	Stale     bool      `json:"stale,omitempty"`
}

type cartViewJSON struct {
	Items         []cartItemJSON `json:"items"`
	ItemsCount    int32          `json:"itemsCount"`
	Subtotal      moneyJSON      `json:"subtotal"`
	Discount      moneyJSON      `json:"discount"`
	Total         moneyJSON      `json:"total"`
	CouponCode    string         `json:"couponCode,omitempty"`
	CouponApplied bool           `json:"couponApplied,omitempty"`
}

type mutationJSON struct {
	Cart       cartViewJSON `json:"cart"`
	Quantity   int32        `json:"quantity"`
	WasLimited bool         `json:"wasLimited"`
}

func toMoneyJSON(m domain.Money) moneyJSON {
	return moneyJSON{Currency: m.Currency, Amount: m.Amount}
}

func toViewJSON(v domain.CartView) cartViewJSON {
	out := cartViewJSON{
		Items:         make([]cartItemJSON, 0, len(v.Items)),
		ItemsCount:    v.ItemsCount,
		Subtotal:      toMoneyJSON(v.Subtotal),
		Discount:      toMoneyJSON(v.Discount),
		Total:         toMoneyJSON(v.Total),
		CouponCode:    v.CouponCode,
		CouponApplied: v.CouponApplied,
	}
	for _, it := range v.Items {
		out.Items = append(out.Items, cartItemJSON{
			VariantID: it.VariantID,
			Name:      it.Name,
			Image:     it.Image,
			UnitPrice: toMoneyJSON(it.UnitPrice),
			Quantity:  it.Quantity,
			Subtotal:  toMoneyJSON(it.Subtotal),
			Stale:     it.Stale,
		})
	}
	return out
}

func (s *server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toViewJSON(s.svc.Cart(r.Context())))
}

func (s *server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VariantID string `json:"variantId"`
		Quantity  int32  `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body")
		return
	}

	out, err := s.svc.AddItem(r.Context(), req.VariantID, req.Quantity)
	if err != nil {
		s.writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationJSON{
		Cart:       toViewJSON(out.View),
		Quantity:   out.CappedQty,
		WasLimited: out.WasLimited,
	})
}

func (s *server) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int32 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body")
		return
	}

	out, err := s.svc.SetItemQuantity(r.Context(), r.PathValue("variantId"), req.Quantity)
	if err != nil {
		s.writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationJSON{
		Cart:       toViewJSON(out.View),
		Quantity:   out.ActualQty,
		WasLimited: out.WasLimited,
	})
}

func (s *server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.RemoveItem(r.Context(), r.PathValue("variantId"))
	if err != nil {
		s.writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toViewJSON(view))
}

func (s *server) handleSetCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body")
		return
	}

	// Warm the coupon rule so projection can resolve it; an unknown or
	// unreachable coupon still goes on the cart, it just won't discount.
	if req.Code != "" {
		if _, err := s.cache.Coupon(r.Context(), req.Code); err != nil {
			s.log.Debug("coupon not resolvable", slog.String("code", req.Code), slog.Any("err", err))
		}
	}

	view, err := s.svc.SetCoupon(r.Context(), req.Code)
	if err != nil {
		s.writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toViewJSON(view))
}

func (s *server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "session token required")
		return
	}

	s.token.Store(req.Token)
	s.svc.SignIn(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.token.Store("")
	s.svc.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) writeErrorFor(w http.ResponseWriter, err error) {
	status, code := httpStatusFromErr(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", slog.Any("err", err))
	}
	writeError(w, status, code, err.Error())
}

func httpStatusFromErr(err error) (int, string) {
	switch {
	case errors.Is(err, cartapp.ErrInvalidInput), errors.Is(err, catalogapp.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, catalogapp.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

type errBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errBody
	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
