package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// State is the combined cart and wishlist record for one shopper session.
// Both collections persist as a single blob so that a move between them is
// durably atomic: a crash between two separate writes can neither duplicate
// nor drop an item.
type State struct {
	Cart      []CartLine      `json:"cart"`
	Wishlist  []WishlistEntry `json:"wishlist"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewState returns a State with empty, non-nil collections.
func NewState() State {
	return State{
		Cart:     []CartLine{},
		Wishlist: []WishlistEntry{},
	}
}

// CartTotal returns the sum of unit price times quantity over all cart
// lines. It is recomputed on every call, never cached.
func (s *State) CartTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Cart {
		total = total.Add(line.LineTotal())
	}
	return total
}

// CartItemCount returns the sum of quantities across all cart lines.
func (s *State) CartItemCount() int {
	var count int
	for _, line := range s.Cart {
		count += line.Quantity
	}
	return count
}

// FindCartLine returns the index of the cart line with the given product id,
// or -1 if absent.
func (s *State) FindCartLine(id ProductID) int {
	for i := range s.Cart {
		if s.Cart[i].ProductID == id {
			return i
		}
	}
	return -1
}

// FindWishlistEntry returns the index of the wishlist entry with the given
// product id, or -1 if absent.
func (s *State) FindWishlistEntry(id ProductID) int {
	for i := range s.Wishlist {
		if s.Wishlist[i].ProductID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the state. Mutating the copy's collections
// does not affect the original.
func (s *State) Clone() State {
	out := State{
		Cart:      make([]CartLine, len(s.Cart)),
		Wishlist:  make([]WishlistEntry, len(s.Wishlist)),
		UpdatedAt: s.UpdatedAt,
	}
	copy(out.Cart, s.Cart)
	copy(out.Wishlist, s.Wishlist)
	return out
}

// Check verifies the structural invariants of a restored state: required
// fields present, quantities within stock bounds, and no duplicate product
// ids within a collection. A persisted blob failing this check is treated as
// corrupt and discarded.
func (s *State) Check() error {
	seen := make(map[ProductID]struct{}, len(s.Cart))
	for i, line := range s.Cart {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("cart line %d: %w", i, err)
		}
		if line.Quantity < 1 {
			return fmt.Errorf("cart line %d: quantity %d below 1", i, line.Quantity)
		}
		if line.Quantity > line.EffectiveStockLimit() {
			return fmt.Errorf("cart line %d: quantity %d exceeds stock limit %d", i, line.Quantity, line.EffectiveStockLimit())
		}
		if _, dup := seen[line.ProductID]; dup {
			return fmt.Errorf("cart line %d: duplicate product id %s", i, line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}

	seen = make(map[ProductID]struct{}, len(s.Wishlist))
	for i, entry := range s.Wishlist {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("wishlist entry %d: %w", i, err)
		}
		if _, dup := seen[entry.ProductID]; dup {
			return fmt.Errorf("wishlist entry %d: duplicate product id %s", i, entry.ProductID)
		}
		seen[entry.ProductID] = struct{}{}
	}

	return nil
}
