package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/domain"
)

var ErrInvalidInput = errors.New("invalid input")

type SessionState int

const (
	Unauthenticated SessionState = iota
	AuthenticatedSyncing
	AuthenticatedSynced
)

func (s SessionState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case AuthenticatedSyncing:
		return "authenticated-syncing"
	case AuthenticatedSynced:
		return "authenticated-synced"
	default:
		return "unknown"
	}
}

type AddOutcome struct {
	View       domain.CartView
	CappedQty  int32
	WasLimited bool
}

type SetOutcome struct {
	View       domain.CartView
	ActualQty  int32
	WasLimited bool
}

type Options struct {
	// Debounce is the quiet period before a mutated variant is pushed to
	// the storefront. Zero means the 500ms default.
	Debounce    time.Duration
	PushTimeout time.Duration
	Logger      *slog.Logger
}

const (
	defaultDebounce    = 500 * time.Millisecond
	defaultPushTimeout = 5 * time.Second
)

// Service is the cart reconciliation controller. The device-local cart is
// the single source of truth for reads; the storefront cart is brought
// into agreement in the background, and only for authenticated sessions.
// All remote interaction is best effort: a network failure degrades to
// local-only operation and is logged, never surfaced.
type Service struct {
	store   CartStore
	remote  RemoteCart
	catalog Catalog
	coupons domain.CouponResolver

	log         *slog.Logger
	debounce    time.Duration
	pushTimeout time.Duration

	mu        sync.Mutex
	loaded    bool
	cart      domain.Cart
	state     SessionState
	needsSync bool
	timers    map[string]*time.Timer
	// failed holds variants whose last push errored; the server is known
	// to diverge for them until a later push or flush repairs it.
	failed map[string]struct{}
	// pushing counts pushes that have fired but not yet resolved. They
	// block promotion to synced the same way pending timers do.
	pushing  int
	fetchGen uint64
	subs     []func(domain.CartView)
}

func NewService(store CartStore, remote RemoteCart, catalog Catalog, coupons domain.CouponResolver, opts Options) *Service {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.PushTimeout <= 0 {
		opts.PushTimeout = defaultPushTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Service{
		store:       store,
		remote:      remote,
		catalog:     catalog,
		coupons:     coupons,
		log:         opts.Logger,
		debounce:    opts.Debounce,
		pushTimeout: opts.PushTimeout,
		timers:      make(map[string]*time.Timer),
		failed:      make(map[string]struct{}),
	}
}

// Cart returns the projected local cart. It never touches the network.
func (s *Service) Cart(ctx context.Context) domain.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)
	return s.projectLocked()
}

func (s *Service) AddItem(ctx context.Context, variantID string, quantity int32) (AddOutcome, error) {
	variantID = strings.TrimSpace(variantID)
	if variantID == "" {
		return AddOutcome{}, ErrInvalidInput
	}

	meta, err := s.catalog.Variant(ctx, variantID)
	if err != nil {
		return AddOutcome{}, fmt.Errorf("resolve variant %s: %w", variantID, err)
	}

	s.mu.Lock()
	s.ensureLoadedLocked(ctx)
	res := domain.AddItem(s.cart, variantID, quantity, meta)
	s.applyLocked(ctx, res.Cart, variantID)
	view := s.projectLocked()
	s.mu.Unlock()

	s.publish(view)
	return AddOutcome{View: view, CappedQty: res.CappedQty, WasLimited: res.WasLimited}, nil
}

func (s *Service) SetItemQuantity(ctx context.Context, variantID string, quantity int32) (SetOutcome, error) {
	variantID = strings.TrimSpace(variantID)
	if variantID == "" {
		return SetOutcome{}, ErrInvalidInput
	}

	s.mu.Lock()
	s.ensureLoadedLocked(ctx)
	res := domain.SetItemQuantity(s.cart, variantID, quantity)
	s.applyLocked(ctx, res.Cart, variantID)
	view := s.projectLocked()
	s.mu.Unlock()

	s.publish(view)
	return SetOutcome{View: view, ActualQty: res.ActualQty, WasLimited: res.WasLimited}, nil
}

func (s *Service) RemoveItem(ctx context.Context, variantID string) (domain.CartView, error) {
	variantID = strings.TrimSpace(variantID)
	if variantID == "" {
		return domain.CartView{}, ErrInvalidInput
	}

	s.mu.Lock()
	s.ensureLoadedLocked(ctx)
	next := domain.RemoveItem(s.cart, variantID)
	s.applyLocked(ctx, next, variantID)
	view := s.projectLocked()
	s.mu.Unlock()

	s.publish(view)
	return view, nil
}

// SetCoupon records a coupon code on the local cart. An empty code clears
// it. Whether the code resolves to a discount is the projector's concern.
func (s *Service) SetCoupon(ctx context.Context, code string) (domain.CartView, error) {
	code = strings.TrimSpace(code)

	s.mu.Lock()
	s.ensureLoadedLocked(ctx)
	next := s.cart.Clone()
	next.CouponCode = code
	s.writeLocked(ctx, next)
	view := s.projectLocked()
	s.mu.Unlock()

	s.publish(view)
	return view, nil
}

// SignIn moves the session to authenticated-syncing and kicks off the
// remote fetch and merge in the background. The caller is never blocked
// on the network.
func (s *Service) SignIn(ctx context.Context) {
	s.mu.Lock()
	s.ensureLoadedLocked(ctx)
	s.state = AuthenticatedSyncing
	s.fetchGen++
	gen := s.fetchGen
	s.mu.Unlock()

	go s.reconcile(gen)
}

// Logout clears the local cart, cancels every pending push and resets the
// sync state.
func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	s.cancelTimersLocked()
	s.failed = make(map[string]struct{})
	s.fetchGen++
	s.state = Unauthenticated
	s.needsSync = false
	s.cart = domain.Cart{}
	s.loaded = true
	view := s.projectLocked()
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		s.log.Warn("local cart clear failed", slog.Any("err", err))
	}
	s.publish(view)
}

// Flush is the teardown push: if local state is ahead of the storefront,
// send the full item list once, best effort. Pending debounce timers are
// cancelled since the flush supersedes them.
func (s *Service) Flush(ctx context.Context) {
	s.mu.Lock()
	if s.state == Unauthenticated || !s.needsSync {
		s.mu.Unlock()
		return
	}
	s.cancelTimersLocked()
	items := s.cart.Clone().Items
	s.mu.Unlock()

	if err := s.remote.Replace(ctx, items); err != nil {
		s.log.Warn("teardown cart flush failed", slog.Any("err", err))
		return
	}

	s.mu.Lock()
	s.needsSync = false
	s.failed = make(map[string]struct{})
	if s.state == AuthenticatedSyncing {
		s.state = AuthenticatedSynced
	}
	s.mu.Unlock()
}

// Subscribe registers fn to receive a fresh cart view after every local
// mutation and every merge. Callbacks run outside the controller's lock.
func (s *Service) Subscribe(fn func(domain.CartView)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Service) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Service) NeedsSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsSync
}

func (s *Service) ensureLoadedLocked(ctx context.Context) {
	if s.loaded {
		return
	}
	cart, err := s.store.Read(ctx)
	if err != nil {
		s.log.Warn("local cart read failed, starting empty", slog.Any("err", err))
		cart = domain.Cart{}
	}
	s.cart = cart
	s.loaded = true
}

// applyLocked commits a mutated cart and, when a session is signed in,
// marks it dirty and restarts the debounce timer for the touched variant.
func (s *Service) applyLocked(ctx context.Context, next domain.Cart, variantID string) {
	s.writeLocked(ctx, next)
	if s.state == Unauthenticated {
		return
	}
	s.needsSync = true
	s.schedulePushLocked(variantID)
}

func (s *Service) writeLocked(ctx context.Context, next domain.Cart) {
	next.LastModified = time.Now().UTC()
	if err := s.store.Write(ctx, next); err != nil {
		s.log.Warn("local cart write failed", slog.Any("err", err))
	}
	s.cart = next
}

func (s *Service) projectLocked() domain.CartView {
	return domain.Project(s.cart, s.catalog, s.coupons)
}

// schedulePushLocked restarts the per-variant debounce timer. Only the
// quantity current when the timer fires is ever sent; intermediate values
// within the window are coalesced away.
func (s *Service) schedulePushLocked(variantID string) {
	if t, ok := s.timers[variantID]; ok {
		t.Stop()
	}
	s.timers[variantID] = time.AfterFunc(s.debounce, func() {
		s.pushVariant(variantID)
	})
}

func (s *Service) cancelTimersLocked() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Service) pushVariant(variantID string) {
	s.mu.Lock()
	if _, ok := s.timers[variantID]; !ok {
		// Cancelled between firing and acquiring the lock.
		s.mu.Unlock()
		return
	}
	delete(s.timers, variantID)
	if s.state == Unauthenticated {
		s.mu.Unlock()
		return
	}
	var quantity int32
	if idx := s.cart.Find(variantID); idx >= 0 {
		quantity = s.cart.Items[idx].Quantity
	}
	s.pushing++
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.pushTimeout)
	defer cancel()

	var err error
	if quantity > 0 {
		err = s.remote.SetItem(ctx, variantID, quantity)
	} else {
		err = s.remote.RemoveItem(ctx, variantID)
	}
	if err != nil {
		// One variant's failure never blocks the others or the local cart,
		// but the divergence stays flagged until a later push or the
		// teardown flush repairs it.
		s.log.Warn("cart item push failed",
			slog.String("variant_id", variantID),
			slog.Int("quantity", int(quantity)),
			slog.Any("err", err))
		s.mu.Lock()
		s.pushing--
		s.failed[variantID] = struct{}{}
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.pushing--
	delete(s.failed, variantID)
	if len(s.timers) == 0 && s.pushing == 0 && len(s.failed) == 0 && s.state != Unauthenticated {
		s.needsSync = false
		s.state = AuthenticatedSynced
	}
	s.mu.Unlock()
}

// reconcile fetches the storefront cart and applies the merge policy.
// Local intent wins whenever the device has items; the remote cart only
// takes over an empty local cart.
func (s *Service) reconcile(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.pushTimeout)
	defer cancel()

	remote, err := s.remote.Get(ctx)
	if err != nil {
		s.log.Warn("remote cart fetch failed, staying local", slog.Any("err", err))
		s.mu.Lock()
		if gen == s.fetchGen && s.state != Unauthenticated && !s.cart.IsEmpty() {
			s.needsSync = true
		}
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	if gen != s.fetchGen || s.state == Unauthenticated {
		// Session changed while the fetch was in flight.
		s.mu.Unlock()
		return
	}

	var view domain.CartView
	switch {
	case s.cart.IsEmpty() && !remote.IsEmpty():
		next := s.cart.Clone()
		next.Items = remote.Clone().Items
		if next.CouponCode == "" {
			next.CouponCode = remote.CouponCode
		}
		s.writeLocked(ctx, next)
		s.needsSync = false
		s.failed = make(map[string]struct{})
		s.state = AuthenticatedSynced
		view = s.projectLocked()

	case !s.cart.IsEmpty():
		// Local wins, with or without remote items; the storefront is
		// brought up to date variant by variant. The session stays
		// syncing until those pushes have actually landed.
		s.needsSync = true
		for _, id := range s.cart.VariantIDs() {
			s.schedulePushLocked(id)
		}
		view = s.projectLocked()

	default:
		// Both empty.
		s.needsSync = false
		s.failed = make(map[string]struct{})
		s.state = AuthenticatedSynced
		view = s.projectLocked()
	}
	s.mu.Unlock()

	s.publish(view)
}

func (s *Service) publish(view domain.CartView) {
	s.mu.Lock()
	subs := make([]func(domain.CartView), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(view)
	}
}
