package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vipioko/vaxdog-commerce/internal/domain"
	apperrors "github.com/vipioko/vaxdog-commerce/pkg/errors"
	"github.com/vipioko/vaxdog-commerce/pkg/httputil"
	"github.com/vipioko/vaxdog-commerce/pkg/validator"
)

// CartHandler serves the cart endpoints.
type CartHandler struct {
	svc    CommerceService
	logger *slog.Logger
}

func NewCartHandler(svc CommerceService, logger *slog.Logger) *CartHandler {
	return &CartHandler{svc: svc, logger: logger}
}

func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Route("/items/{productID}", func(r chi.Router) {
			r.Get("/", h.GetItem)
			r.Put("/", h.UpdateItemQuantity)
			r.Delete("/", h.RemoveItem)
		})
	})
}

// Get returns the full cart with line totals and the running total.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.State(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, newCartView(state), nil)
}

// AddItem adds the posted product to the cart, merging quantities when the
// product is already present. Quantity defaults to 1.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := validator.Validate(&req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	err := h.svc.AddToCart(r.Context(), sessionID(r), req.toSnapshot(), req.Quantity)
	h.respond(w, r, err)
}

// UpdateItemQuantity sets the line's quantity; zero removes the line.
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	id := domain.ProductID(chi.URLParam(r, "productID"))
	err := h.svc.UpdateCartQuantity(r.Context(), sessionID(r), id, *req.Quantity)
	h.respond(w, r, err)
}

// RemoveItem removes the line; removing an absent line still returns the
// current cart.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := domain.ProductID(chi.URLParam(r, "productID"))
	err := h.svc.RemoveFromCart(r.Context(), sessionID(r), id)
	h.respond(w, r, err)
}

// Clear empties the cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	err := h.svc.ClearCart(r.Context(), sessionID(r))
	h.respond(w, r, err)
}

// GetItem reports cart membership and quantity for one product.
func (h *CartHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.State(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	id := domain.ProductID(chi.URLParam(r, "productID"))
	view := cartMembershipView{ProductID: id}
	if i := state.FindCartLine(id); i >= 0 {
		view.InCart = true
		view.Quantity = state.Cart[i].Quantity
	}
	httputil.WriteData(w, view, nil)
}

// respond writes the post-mutation cart. A persistence failure is surfaced
// as a warning next to the updated cart, since the in-memory state already
// reflects the change.
func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, opErr error) {
	if opErr != nil && !errors.Is(opErr, apperrors.ErrPersistence) {
		httputil.WriteError(w, r, opErr, h.logger)
		return
	}

	state, err := h.svc.State(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, newCartView(state), opErr)
}
