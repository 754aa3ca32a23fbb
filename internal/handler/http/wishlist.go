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
	"github.com/vipioko/vaxdog-commerce/pkg/pagination"
	"github.com/vipioko/vaxdog-commerce/pkg/validator"
)

// WishlistHandler serves the wishlist endpoints.
type WishlistHandler struct {
	svc    CommerceService
	logger *slog.Logger
}

func NewWishlistHandler(svc CommerceService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{svc: svc, logger: logger}
}

func (h *WishlistHandler) RegisterRoutes(r chi.Router) {
	r.Route("/wishlist", func(r chi.Router) {
		r.Get("/", h.List)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Route("/items/{productID}", func(r chi.Router) {
			r.Get("/", h.GetItem)
			r.Delete("/", h.RemoveItem)
			r.Post("/move", h.MoveToCart)
		})
	})
}

// List returns a page of wishlist entries in insertion order.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.State(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	params := pagination.FromRequest(r)
	start, end := params.Slice(len(state.Wishlist))

	items := make([]wishlistItemView, 0, end-start)
	for _, entry := range state.Wishlist[start:end] {
		items = append(items, newWishlistItemView(entry))
	}

	httputil.WriteJSON(w, http.StatusOK,
		httputil.NewPaginatedResponse(items, len(state.Wishlist), params.Page, params.PerPage))
}

// AddItem saves the posted product for later. Saving a product twice is
// answered with a conflict and leaves the wishlist unchanged.
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req productPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if err := validator.Validate(&req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	err := h.svc.AddToWishlist(r.Context(), sessionID(r), req.toSnapshot())
	h.respond(w, r, err)
}

// RemoveItem removes the entry; removing an absent entry still returns the
// current wishlist.
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := domain.ProductID(chi.URLParam(r, "productID"))
	err := h.svc.RemoveFromWishlist(r.Context(), sessionID(r), id)
	h.respond(w, r, err)
}

// MoveToCart transfers the entry into the cart. On a stock rejection neither
// collection changes.
func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	var req moveToCartRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := validator.Validate(&req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	id := domain.ProductID(chi.URLParam(r, "productID"))
	opErr := h.svc.MoveToCart(r.Context(), sessionID(r), id, req.Quantity)
	if opErr != nil && !errors.Is(opErr, apperrors.ErrPersistence) {
		httputil.WriteError(w, r, opErr, h.logger)
		return
	}

	// A move changes both collections, so return the combined state.
	state, err := h.svc.State(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	wishlist := make([]wishlistItemView, 0, len(state.Wishlist))
	for _, entry := range state.Wishlist {
		wishlist = append(wishlist, newWishlistItemView(entry))
	}
	httputil.WriteData(w, map[string]any{
		"cart":     newCartView(state),
		"wishlist": wishlist,
	}, opErr)
}

// Clear empties the wishlist.
func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	err := h.svc.ClearWishlist(r.Context(), sessionID(r))
	h.respond(w, r, err)
}

// GetItem reports wishlist membership for one product.
func (h *WishlistHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.State(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	id := domain.ProductID(chi.URLParam(r, "productID"))
	httputil.WriteData(w, wishlistMembershipView{
		ProductID:  id,
		InWishlist: state.FindWishlistEntry(id) >= 0,
	}, nil)
}

func (h *WishlistHandler) respond(w http.ResponseWriter, r *http.Request, opErr error) {
	if opErr != nil && !errors.Is(opErr, apperrors.ErrPersistence) {
		httputil.WriteError(w, r, opErr, h.logger)
		return
	}

	state, err := h.svc.State(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	items := make([]wishlistItemView, 0, len(state.Wishlist))
	for _, entry := range state.Wishlist {
		items = append(items, newWishlistItemView(entry))
	}
	httputil.WriteData(w, items, opErr)
}
