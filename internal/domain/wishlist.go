package domain

// WishlistEntry represents one product saved for later. It carries no
// quantity; a saved product is implicitly a single unit until moved to the
// cart.
type WishlistEntry struct {
	ProductSnapshot
}
