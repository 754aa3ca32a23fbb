package http

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vipioko/vaxdog-commerce/internal/domain"
)

// CommerceService is the session-scoped state API the handlers depend on.
type CommerceService interface {
	AddToCart(ctx context.Context, sessionID string, snap domain.ProductSnapshot, quantity int) error
	RemoveFromCart(ctx context.Context, sessionID string, id domain.ProductID) error
	UpdateCartQuantity(ctx context.Context, sessionID string, id domain.ProductID, quantity int) error
	ClearCart(ctx context.Context, sessionID string) error
	AddToWishlist(ctx context.Context, sessionID string, snap domain.ProductSnapshot) error
	RemoveFromWishlist(ctx context.Context, sessionID string, id domain.ProductID) error
	MoveToCart(ctx context.Context, sessionID string, id domain.ProductID, quantity int) error
	ClearWishlist(ctx context.Context, sessionID string) error
	State(ctx context.Context, sessionID string) (domain.State, error)
}

// productPayload is the client-supplied product snapshot. The productId
// field accepts both JSON strings and numbers; either form normalizes to the
// same canonical identifier.
type productPayload struct {
	ProductID  domain.ProductID `json:"productId" validate:"required"`
	Name       string           `json:"name" validate:"required"`
	UnitPrice  *decimal.Decimal `json:"unitPrice" validate:"required"`
	ImageURL   string           `json:"imageUrl" validate:"omitempty,url"`
	Category   string           `json:"category"`
	StockLimit *int             `json:"stockLimit" validate:"omitempty,gte=0"`
}

func (p productPayload) toSnapshot() domain.ProductSnapshot {
	snap := domain.ProductSnapshot{
		ProductID:  p.ProductID,
		Name:       p.Name,
		ImageURL:   p.ImageURL,
		Category:   p.Category,
		StockLimit: p.StockLimit,
	}
	if p.UnitPrice != nil {
		snap.UnitPrice = *p.UnitPrice
	}
	return snap
}

type addToCartRequest struct {
	productPayload
	Quantity int `json:"quantity" validate:"gte=1"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type moveToCartRequest struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

type cartItemView struct {
	ProductID  domain.ProductID `json:"productId"`
	Name       string           `json:"name"`
	UnitPrice  decimal.Decimal  `json:"unitPrice"`
	ImageURL   string           `json:"imageUrl,omitempty"`
	Category   string           `json:"category,omitempty"`
	StockLimit int              `json:"stockLimit"`
	Quantity   int              `json:"quantity"`
	LineTotal  decimal.Decimal  `json:"lineTotal"`
}

type cartView struct {
	Items     []cartItemView  `json:"items"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
}

type wishlistItemView struct {
	ProductID  domain.ProductID `json:"productId"`
	Name       string           `json:"name"`
	UnitPrice  decimal.Decimal  `json:"unitPrice"`
	ImageURL   string           `json:"imageUrl,omitempty"`
	Category   string           `json:"category,omitempty"`
	StockLimit int              `json:"stockLimit"`
	InStock    bool             `json:"inStock"`
}

type cartMembershipView struct {
	ProductID domain.ProductID `json:"productId"`
	InCart    bool             `json:"inCart"`
	Quantity  int              `json:"quantity"`
}

type wishlistMembershipView struct {
	ProductID  domain.ProductID `json:"productId"`
	InWishlist bool             `json:"inWishlist"`
}

func newCartView(state domain.State) cartView {
	items := make([]cartItemView, 0, len(state.Cart))
	for _, line := range state.Cart {
		items = append(items, cartItemView{
			ProductID:  line.ProductID,
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			ImageURL:   line.ImageURL,
			Category:   line.Category,
			StockLimit: line.EffectiveStockLimit(),
			Quantity:   line.Quantity,
			LineTotal:  line.LineTotal(),
		})
	}
	return cartView{
		Items:     items,
		ItemCount: state.CartItemCount(),
		Total:     state.CartTotal(),
	}
}

func newWishlistItemView(entry domain.WishlistEntry) wishlistItemView {
	return wishlistItemView{
		ProductID:  entry.ProductID,
		Name:       entry.Name,
		UnitPrice:  entry.UnitPrice,
		ImageURL:   entry.ImageURL,
		Category:   entry.Category,
		StockLimit: entry.EffectiveStockLimit(),
		InStock:    entry.InStock(),
	}
}
