package engine

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vipioko/vaxdog-commerce/internal/domain"
	"github.com/vipioko/vaxdog-commerce/internal/storage"
	apperrors "github.com/vipioko/vaxdog-commerce/pkg/errors"
)

// ChangeKind identifies which collection a state change touched.
type ChangeKind string

const (
	ChangeCartUpdated     ChangeKind = "cart.updated"
	ChangeCartCleared     ChangeKind = "cart.cleared"
	ChangeWishlistUpdated ChangeKind = "wishlist.updated"
	ChangeWishlistCleared ChangeKind = "wishlist.cleared"
	ChangeItemMoved       ChangeKind = "item.moved"
)

// Change describes a completed state mutation, delivered to observers after
// every state-changing operation. State is a deep copy.
type Change struct {
	Kind      ChangeKind
	ProductID domain.ProductID
	State     domain.State
}

// Observer receives change notifications. Observers run synchronously on the
// mutating call; they must not call back into the engine.
type Observer func(ctx context.Context, change Change)

// Engine owns the cart and wishlist state for one shopper session and its
// persisted image under a single storage key. Every successful mutation is
// written through to the store before the call returns; a store write
// failure keeps the in-memory state authoritative for the session and is
// reported as a persistence failure the caller can treat as advisory.
//
// The engine does no locking. It expects a single owner serializing calls;
// the service layer holds one mutex per session.
type Engine struct {
	store     storage.Store
	key       string
	logger    *slog.Logger
	state     domain.State
	ready     bool
	observers []Observer
}

// New creates an engine bound to the given storage key. Init must be called
// before any operation.
func New(store storage.Store, key string, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		key:    key,
		logger: logger,
		state:  domain.NewState(),
	}
}

// Init loads the persisted state. An absent blob yields empty collections. A
// blob that fails to decode or violates structural invariants is discarded
// with a warning and the collections start empty; the corrupted blob is
// overwritten on the next successful write rather than eagerly. Only a store
// read error fails initialization.
//
// Writes through to storage begin only after Init returns, so an empty
// in-memory state can never clobber persisted state that was not yet loaded.
func (e *Engine) Init(ctx context.Context) error {
	data, err := e.store.Get(ctx, e.key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			e.state = domain.NewState()
			e.ready = true
			return nil
		}
		return apperrors.Wrap(err, "load persisted state")
	}

	var restored domain.State
	if err := json.Unmarshal(data, &restored); err != nil {
		e.logger.WarnContext(ctx, "discarding corrupt persisted state",
			slog.String("key", e.key),
			slog.String("error", err.Error()),
		)
		e.state = domain.NewState()
		e.ready = true
		return nil
	}

	if err := restored.Check(); err != nil {
		e.logger.WarnContext(ctx, "discarding persisted state violating invariants",
			slog.String("key", e.key),
			slog.String("error", err.Error()),
		)
		e.state = domain.NewState()
		e.ready = true
		return nil
	}

	if restored.Cart == nil {
		restored.Cart = []domain.CartLine{}
	}
	if restored.Wishlist == nil {
		restored.Wishlist = []domain.WishlistEntry{}
	}

	e.state = restored
	e.ready = true
	return nil
}

// Ready reports whether Init has completed successfully.
func (e *Engine) Ready() bool {
	return e.ready
}

// Subscribe registers an observer for subsequent state changes.
func (e *Engine) Subscribe(obs Observer) {
	e.observers = append(e.observers, obs)
}

// --- Cart mutations ---

// AddToCart merges the snapshot into an existing line or appends a new one.
// The merged or initial quantity must not exceed the line's stock limit;
// otherwise the whole operation is rejected with no partial increment.
func (e *Engine) AddToCart(ctx context.Context, snap domain.ProductSnapshot, quantity int) error {
	if err := e.checkReady(); err != nil {
		return err
	}
	if quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	if err := e.applyCartAdd(snap, quantity); err != nil {
		return err
	}

	return e.commit(ctx, ChangeCartUpdated, snap.ProductID)
}

// RemoveFromCart removes the line if present. Removing an absent line is a
// no-op, not an error.
func (e *Engine) RemoveFromCart(ctx context.Context, id domain.ProductID) error {
	if err := e.checkReady(); err != nil {
		return err
	}

	i := e.state.FindCartLine(id)
	if i < 0 {
		return nil
	}

	e.state.Cart = append(e.state.Cart[:i], e.state.Cart[i+1:]...)
	return e.commit(ctx, ChangeCartUpdated, id)
}

// UpdateCartQuantity replaces the line's quantity. A quantity of zero or
// below removes the line. A quantity above the line's stock limit is
// rejected, leaving the prior quantity intact. Updating an absent line is a
// no-op.
func (e *Engine) UpdateCartQuantity(ctx context.Context, id domain.ProductID, quantity int) error {
	if err := e.checkReady(); err != nil {
		return err
	}

	if quantity <= 0 {
		return e.RemoveFromCart(ctx, id)
	}

	i := e.state.FindCartLine(id)
	if i < 0 {
		return nil
	}

	line := &e.state.Cart[i]
	if limit := line.EffectiveStockLimit(); quantity > limit {
		return apperrors.StockExceeded(id.String(), limit)
	}

	line.Quantity = quantity
	return e.commit(ctx, ChangeCartUpdated, id)
}

// ClearCart empties the cart unconditionally. It persists and notifies even
// when the cart is already empty, as an explicit user-visible reset signal.
func (e *Engine) ClearCart(ctx context.Context) error {
	if err := e.checkReady(); err != nil {
		return err
	}

	e.state.Cart = []domain.CartLine{}
	return e.commit(ctx, ChangeCartCleared, "")
}

// --- Wishlist mutations ---

// AddToWishlist appends a new entry. Adding a product already on the
// wishlist returns AlreadyExists with the state unchanged; callers treat it
// as "nothing to do" rather than a failure.
func (e *Engine) AddToWishlist(ctx context.Context, snap domain.ProductSnapshot) error {
	if err := e.checkReady(); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	if e.state.FindWishlistEntry(snap.ProductID) >= 0 {
		return apperrors.AlreadyExists("wishlist entry", snap.ProductID.String())
	}

	e.state.Wishlist = append(e.state.Wishlist, domain.WishlistEntry{ProductSnapshot: snap})
	return e.commit(ctx, ChangeWishlistUpdated, snap.ProductID)
}

// RemoveFromWishlist removes the entry if present; no-op if absent.
func (e *Engine) RemoveFromWishlist(ctx context.Context, id domain.ProductID) error {
	if err := e.checkReady(); err != nil {
		return err
	}

	i := e.state.FindWishlistEntry(id)
	if i < 0 {
		return nil
	}

	e.state.Wishlist = append(e.state.Wishlist[:i], e.state.Wishlist[i+1:]...)
	return e.commit(ctx, ChangeWishlistUpdated, id)
}

// MoveToCart transfers a wishlist entry into the cart, atomically from the
// caller's perspective: the cart-side add is checked first, and only if it
// succeeds is the wishlist entry removed. Both collections persist as one
// record in a single write, so no observable or durable state has the item
// in neither or duplicated. Moving an absent entry is a no-op.
func (e *Engine) MoveToCart(ctx context.Context, id domain.ProductID, quantity int) error {
	if err := e.checkReady(); err != nil {
		return err
	}
	if quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}

	i := e.state.FindWishlistEntry(id)
	if i < 0 {
		return nil
	}

	if err := e.applyCartAdd(e.state.Wishlist[i].ProductSnapshot, quantity); err != nil {
		return err
	}

	e.state.Wishlist = append(e.state.Wishlist[:i], e.state.Wishlist[i+1:]...)
	return e.commit(ctx, ChangeItemMoved, id)
}

// ClearWishlist empties the wishlist unconditionally.
func (e *Engine) ClearWishlist(ctx context.Context) error {
	if err := e.checkReady(); err != nil {
		return err
	}

	e.state.Wishlist = []domain.WishlistEntry{}
	return e.commit(ctx, ChangeWishlistCleared, "")
}

// --- Derived queries (pure, never fail) ---

// State returns a deep copy of the current state.
func (e *Engine) State() domain.State {
	return e.state.Clone()
}

// Cart returns a copy of the cart lines in insertion order.
func (e *Engine) Cart() []domain.CartLine {
	out := make([]domain.CartLine, len(e.state.Cart))
	copy(out, e.state.Cart)
	return out
}

// Wishlist returns a copy of the wishlist entries in insertion order.
func (e *Engine) Wishlist() []domain.WishlistEntry {
	out := make([]domain.WishlistEntry, len(e.state.Wishlist))
	copy(out, e.state.Wishlist)
	return out
}

// CartTotal returns the sum of unit price times quantity over the cart,
// recomputed fresh on each call.
func (e *Engine) CartTotal() decimal.Decimal {
	return e.state.CartTotal()
}

// CartItemCount returns the sum of cart line quantities.
func (e *Engine) CartItemCount() int {
	return e.state.CartItemCount()
}

// WishlistCount returns the number of wishlist entries.
func (e *Engine) WishlistCount() int {
	return len(e.state.Wishlist)
}

// IsInCart reports whether the product has a cart line.
func (e *Engine) IsInCart(id domain.ProductID) bool {
	return e.state.FindCartLine(id) >= 0
}

// IsInWishlist reports whether the product has a wishlist entry.
func (e *Engine) IsInWishlist(id domain.ProductID) bool {
	return e.state.FindWishlistEntry(id) >= 0
}

// CartQuantityOf returns the product's cart quantity, or 0 if absent.
func (e *Engine) CartQuantityOf(id domain.ProductID) int {
	if i := e.state.FindCartLine(id); i >= 0 {
		return e.state.Cart[i].Quantity
	}
	return 0
}

// --- Internals ---

func (e *Engine) checkReady() error {
	if !e.ready {
		return apperrors.Internal(errors.New("engine not initialized"))
	}
	return nil
}

// applyCartAdd performs the stock-checked merge-or-append without
// persisting. Shared by AddToCart and MoveToCart.
func (e *Engine) applyCartAdd(snap domain.ProductSnapshot, quantity int) error {
	if i := e.state.FindCartLine(snap.ProductID); i >= 0 {
		line := &e.state.Cart[i]
		limit := line.EffectiveStockLimit()
		if line.Quantity+quantity > limit {
			return apperrors.StockExceeded(snap.ProductID.String(), limit)
		}
		line.Quantity += quantity
		return nil
	}

	if limit := snap.EffectiveStockLimit(); quantity > limit {
		return apperrors.StockExceeded(snap.ProductID.String(), limit)
	}

	e.state.Cart = append(e.state.Cart, domain.CartLine{ProductSnapshot: snap, Quantity: quantity})
	return nil
}

// commit stamps the state, writes it through to storage, and notifies
// observers. On a write failure the in-memory mutation is kept, observers
// still run, and a persistence failure is returned; the next successful
// mutation re-persists the full record.
func (e *Engine) commit(ctx context.Context, kind ChangeKind, id domain.ProductID) error {
	e.state.UpdatedAt = time.Now().UTC()

	var persistErr error
	data, err := json.Marshal(e.state)
	if err != nil {
		persistErr = apperrors.Persistence(err)
	} else if err := e.store.Set(ctx, e.key, data); err != nil {
		persistErr = apperrors.Persistence(err)
	}

	if persistErr != nil {
		e.logger.WarnContext(ctx, "state change not persisted, in-memory state remains authoritative",
			slog.String("key", e.key),
			slog.String("error", persistErr.Error()),
		)
	}

	change := Change{Kind: kind, ProductID: id, State: e.state.Clone()}
	for _, obs := range e.observers {
		obs(ctx, change)
	}

	return persistErr
}
