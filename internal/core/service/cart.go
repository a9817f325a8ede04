package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

// Alert messages of the cart operations.
const (
	MsgGetCartFailed    = "取得購物車失敗"
	MsgAddCartFailed    = "加入購物車失敗"
	MsgUpdateCartFailed = "更新購物車失敗"
	MsgDeleteCartFailed = "刪除購物車項目失敗"
)

// ErrResync marks a mutation that reached the server while the following
// cart re-fetch failed. The local snapshot is stale until the next
// successful GetCart.
var ErrResync = errors.New("cart re-sync failed")

// An OpError is returned by a failed cart operation after its alert has
// been sent.
type OpError struct {
	Op      string
	Message string
	Err     error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

type CartState struct {
	Cart       domain.Cart
	IsUpdating bool
	IsDeleting bool
	// Revision counts snapshot replacements.
	Revision uint64
}

func (s CartState) clone() CartState {
	s.Cart = s.Cart.Clone()
	return s
}

// CartStore owns the cart snapshot of one session. Mutations are not
// coordinated: flags and snapshot reflect whichever call finishes last.
type CartStore struct {
	api      port.CartAPI
	notifier port.Notifier

	mu     sync.Mutex
	state  CartState
	subs   map[int]func(CartState)
	nextID int

	// deliverMu keeps subscriber delivery in state order.
	deliverMu sync.Mutex
}

func NewCartStore(api port.CartAPI, notifier port.Notifier) *CartStore {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &CartStore{
		api:      api,
		notifier: notifier,
		state:    CartState{Cart: emptyCart()},
		subs:     make(map[int]func(CartState)),
	}
}

func emptyCart() domain.Cart {
	return domain.Cart{Carts: []domain.CartLineItem{}}
}

func (s *CartStore) State() CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *CartStore) Cart() domain.Cart {
	return s.State().Cart
}

func (s *CartStore) IsUpdating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsUpdating
}

func (s *CartStore) IsDeleting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsDeleting
}

// Subscribe registers fn for every state change. fn runs synchronously
// and must not call the store's operations.
func (s *CartStore) Subscribe(fn func(CartState)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Reset restores the empty cart at a session boundary.
func (s *CartStore) Reset() {
	s.update(func(st *CartState) {
		st.Cart = emptyCart()
		st.IsUpdating = false
		st.IsDeleting = false
	})
}

// GetCart replaces the snapshot with the server's cart. On failure the
// previous snapshot stays.
func (s *CartStore) GetCart(ctx context.Context) error {
	const op = "CartStore.GetCart"

	cart, err := s.api.GetCart(ctx)
	if err != nil {
		return s.fail(ctx, op, MsgGetCartFailed, err)
	}

	s.update(func(st *CartState) {
		st.Cart = cart.Clone()
		st.Revision++
	})
	return nil
}

// AddCartItem has no busy flag.
func (s *CartStore) AddCartItem(ctx context.Context, v domain.AddCartItem) error {
	const op = "CartStore.AddCartItem"

	if err := s.api.AddCartItem(ctx, v); err != nil {
		return s.fail(ctx, op, MsgAddCartFailed, err)
	}
	return s.resync(ctx, op)
}

func (s *CartStore) UpdateCartItem(ctx context.Context, v domain.UpdateCartItem) error {
	const op = "CartStore.UpdateCartItem"

	s.setUpdating(true)
	defer s.setUpdating(false)

	if err := s.api.UpdateCartItem(ctx, v); err != nil {
		return s.fail(ctx, op, MsgUpdateCartFailed, err)
	}
	return s.resync(ctx, op)
}

func (s *CartStore) DeleteCartItem(ctx context.Context, cartID string) error {
	const op = "CartStore.DeleteCartItem"

	s.setDeleting(true)
	defer s.setDeleting(false)

	if err := s.api.DeleteCartItem(ctx, cartID); err != nil {
		return s.fail(ctx, op, MsgDeleteCartFailed, err)
	}
	return s.resync(ctx, op)
}

// resync re-fetches the cart after a mutation. GetCart raises its own
// alert, so nothing more is sent here.
func (s *CartStore) resync(ctx context.Context, op string) error {
	if err := s.GetCart(ctx); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrResync, err)
	}
	return nil
}

func (s *CartStore) fail(ctx context.Context, op, msg string, err error) error {
	s.notifier.Notify(ctx, domain.Alert{Op: op, Message: msg, Err: err})
	return &OpError{Op: op, Message: msg, Err: err}
}

func (s *CartStore) setUpdating(v bool) {
	s.update(func(st *CartState) { st.IsUpdating = v })
}

func (s *CartStore) setDeleting(v bool) {
	s.update(func(st *CartState) { st.IsDeleting = v })
}

func (s *CartStore) update(fn func(*CartState)) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	fn(&s.state)
	st := s.state.clone()
	subs := make([]func(CartState), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(st)
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, domain.Alert) {}
