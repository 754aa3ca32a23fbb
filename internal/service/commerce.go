package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vipioko/vaxdog-commerce/internal/domain"
	"github.com/vipioko/vaxdog-commerce/internal/engine"
	"github.com/vipioko/vaxdog-commerce/internal/storage"
	apperrors "github.com/vipioko/vaxdog-commerce/pkg/errors"
)

const keyPrefix = "commerce:state:"

// ObserverFactory produces a change observer bound to one session. The
// service wires each factory into every engine it creates.
type ObserverFactory func(sessionID string) engine.Observer

// Commerce manages one state engine per shopper session. Engines are created
// lazily on first use, loaded from storage, and evicted after sitting idle;
// a later request for the same session restores the state from its persisted
// record. All operations on one session are serialized by a per-session
// mutex, so engines themselves stay lock-free.
type Commerce struct {
	store     storage.Store
	logger    *slog.Logger
	observers []ObserverFactory
	idleTTL   time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu       sync.Mutex
	eng      *engine.Engine
	lastUsed time.Time
}

// NewCommerce creates the session manager. Sessions idle longer than idleTTL
// are dropped from memory by the evictor; their state stays in storage.
func NewCommerce(store storage.Store, logger *slog.Logger, idleTTL time.Duration, observers ...ObserverFactory) *Commerce {
	return &Commerce{
		store:     store,
		logger:    logger,
		observers: observers,
		idleTTL:   idleTTL,
		sessions:  make(map[string]*session),
	}
}

// StartEvictor runs the idle-session sweep until ctx is cancelled.
func (c *Commerce) StartEvictor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.evictIdle(time.Now()); n > 0 {
					c.logger.Debug("evicted idle sessions", slog.Int("count", n))
				}
			}
		}
	}()
}

func (c *Commerce) evictIdle(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var evicted int
	for id, sess := range c.sessions {
		// Skip sessions mid-operation rather than blocking the sweep.
		if !sess.mu.TryLock() {
			continue
		}
		idle := now.Sub(sess.lastUsed) > c.idleTTL
		sess.mu.Unlock()
		if idle {
			delete(c.sessions, id)
			evicted++
		}
	}
	activeSessions.Set(float64(len(c.sessions)))
	return evicted
}

// SessionCount returns the number of sessions currently held in memory.
func (c *Commerce) SessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// withEngine runs fn against the session's engine while holding the
// session's mutex, creating and initializing the engine on first use.
func (c *Commerce) withEngine(ctx context.Context, sessionID string, fn func(*engine.Engine) error) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	c.mu.Lock()
	sess, ok := c.sessions[sessionID]
	if !ok {
		sess = &session{}
		c.sessions[sessionID] = sess
		activeSessions.Set(float64(len(c.sessions)))
	}
	c.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.eng == nil {
		eng := engine.New(c.store, keyPrefix+sessionID, c.logger)
		if err := eng.Init(ctx); err != nil {
			return err
		}
		for _, factory := range c.observers {
			eng.Subscribe(factory(sessionID))
		}
		sess.eng = eng
	}
	sess.lastUsed = time.Now()

	return fn(sess.eng)
}

// --- Cart operations ---

func (c *Commerce) AddToCart(ctx context.Context, sessionID string, snap domain.ProductSnapshot, quantity int) error {
	start := time.Now()
	err := c.withEngine(ctx, sessionID, func(e *engine.Engine) error {
		return e.AddToCart(ctx, snap, quantity)
	})
	recordOperation("add_to_cart", start, err)
	return err
}

func (c *Commerce) RemoveFromCart(ctx context.Context, sessionID string, id domain.ProductID) error {
	start := time.Now()
	err := c.withEngine(ctx, sessionID, func(e *engine.Engine) error {
		return e.RemoveFromCart(ctx, id)
	})
	recordOperation("remove_from_cart", start, err)
	return err
}

func (c *Commerce) UpdateCartQuantity(ctx context.Context, sessionID string, id domain.ProductID, quantity int) error {
	start := time.Now()
	err := c.withEngine(ctx, sessionID, func(e *engine.Engine) error {
		return e.UpdateCartQuantity(ctx, id, quantity)
	})
	recordOperation("update_cart_quantity", start, err)
	return err
}

func (c *Commerce) ClearCart(ctx context.Context, sessionID string) error {
	start := time.Now()
	err := c.withEngine(ctx, sessionID, func(e *engine.Engine) error {
		return e.ClearCart(ctx)
	})
	recordOperation("clear_cart", start, err)
	return err
}

// --- Wishlist operations ---

func (c *Commerce) AddToWishlist(ctx context.Context, sessionID string, snap domain.ProductSnapshot) error {
	start := time.Now()
	err := c.withEngine(ctx, sessionID, func(e *engine.Engine) error {
		return e.AddToWishlist(ctx, snap)
	})
	recordOperation("add_to_wishlist", start, err)
	return err
}

func (c *Commerce) RemoveFromWishlist(ctx context.Context, sessionID string, id domain.ProductID) error {
	start := time.Now()
	err := c.withEngine(ctx, sessionID, func(e *engine.Engine) error {
		return e.RemoveFromWishlist(ctx, id)
	})
	recordOperation("remove_from_wishlist", start, err)
	return err
}

func (c *Commerce) MoveToCart(ctx context.Context, sessionID string, id domain.ProductID, quantity int) error {
	start := time.Now()
	err := c.withEngine(ctx, sessionID, func(e *engine.Engine) error {
		return e.MoveToCart(ctx, id, quantity)
	})
	recordOperation("move_to_cart", start, err)
	return err
}

func (c *Commerce) ClearWishlist(ctx context.Context, sessionID string) error {
	start := time.Now()
	err := c.withEngine(ctx, sessionID, func(e *engine.Engine) error {
		return e.ClearWishlist(ctx)
	})
	recordOperation("clear_wishlist", start, err)
	return err
}

// --- Queries ---

// State returns a deep copy of the session's current state. Derived values
// (totals, counts, membership) are computed from the copy by callers.
func (c *Commerce) State(ctx context.Context, sessionID string) (domain.State, error) {
	start := time.Now()
	var state domain.State
	err := c.withEngine(ctx, sessionID, func(e *engine.Engine) error {
		state = e.State()
		return nil
	})
	recordOperation("get_state", start, err)
	return state, err
}
