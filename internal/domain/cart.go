package domain

import "github.com/shopspring/decimal"

// CartLine represents one product the shopper intends to buy, with quantity.
type CartLine struct {
	ProductSnapshot
	Quantity int `json:"quantity"`
}

// LineTotal returns unit price times quantity for this line.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
