package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/vipioko/vaxdog-commerce/pkg/errors"
)

// DefaultStockLimit is the purchasable-quantity cap applied to products whose
// snapshot carries no explicit stock limit.
const DefaultStockLimit = 99

// ProductID is the canonical string form of a product's catalog key. The
// storefront sometimes sends numeric ids and sometimes strings for the same
// logical product, so JSON decoding normalizes both to the string form.
// Callers must not rely on the original representation being preserved.
type ProductID string

func (id ProductID) String() string {
	return string(id)
}

// UnmarshalJSON accepts a JSON string or number and stores the canonical
// string form, trimmed of surrounding whitespace.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch t := v.(type) {
	case string:
		*id = ProductID(strings.TrimSpace(t))
	case json.Number:
		*id = ProductID(t.String())
	case nil:
		*id = ""
	default:
		return fmt.Errorf("product id must be a string or number, got %T", v)
	}
	return nil
}

// ProductSnapshot is the product data supplied by the catalog/display layer
// at the moment an item enters the cart or wishlist. It is trusted at call
// time; the engine never re-validates it against a remote catalog.
type ProductSnapshot struct {
	ProductID  ProductID       `json:"product_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	ImageURL   string          `json:"image_url,omitempty"`
	Category   string          `json:"category,omitempty"`
	StockLimit *int            `json:"stock_limit,omitempty"`
}

// Validate checks the required identity, name, and price fields.
func (p ProductSnapshot) Validate() error {
	if strings.TrimSpace(string(p.ProductID)) == "" {
		return apperrors.InvalidInput("product id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.InvalidInput("product name is required")
	}
	if p.UnitPrice.IsNegative() {
		return apperrors.InvalidInput("unit price must not be negative")
	}
	if p.StockLimit != nil && *p.StockLimit < 0 {
		return apperrors.InvalidInput("stock limit must not be negative")
	}
	return nil
}

// EffectiveStockLimit returns the snapshot's stock limit, or
// DefaultStockLimit when none was captured.
func (p ProductSnapshot) EffectiveStockLimit() int {
	if p.StockLimit != nil {
		return *p.StockLimit
	}
	return DefaultStockLimit
}

// InStock reports whether the product was purchasable at snapshot time.
func (p ProductSnapshot) InStock() bool {
	return p.StockLimit == nil || *p.StockLimit > 0
}
