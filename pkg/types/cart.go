package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CartLineItem is one product/size/color combination held in a cart.
type CartLineItem struct {
	ProductID     string `json:"product_id" validate:"required"`
	Name          string `json:"name,omitempty"`
	Image         string `json:"image,omitempty"`
	SKU           string `json:"sku,omitempty"`
	Price         Money  `json:"price"`
	Size          string `json:"size,omitempty"`
	Color         string `json:"color,omitempty"`
	Quantity      int    `json:"quantity" validate:"required,min=1"`
	StockQuantity *int   `json:"stock_quantity,omitempty"`
}

// LineKey identifies a cart line. A cart holds at most one line per key.
type LineKey struct {
	ProductID string
	Size      string
	Color     string
}

func NewLineKey(productID, size, color string) LineKey {
	return LineKey{
		ProductID: strings.TrimSpace(productID),
		Size:      strings.TrimSpace(size),
		Color:     strings.TrimSpace(color),
	}
}

func (i CartLineItem) Key() LineKey {
	return NewLineKey(i.ProductID, i.Size, i.Color)
}

// LineTotal is price × quantity.
func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotals is derived from the lines and never persisted on its own.
type CartTotals struct {
	Subtotal Money `json:"subtotal"`
	Tax      Money `json:"tax"`
	Total    Money `json:"total"`
}

// IsZero reports whether all amounts are zero.
func (t CartTotals) IsZero() bool {
	return t.Subtotal.IsZero() && t.Tax.IsZero() && t.Total.IsZero()
}

// Cart is a point-in-time view of a visitor's cart.
type Cart struct {
	Items         []CartLineItem `json:"items"`
	Totals        CartTotals     `json:"totals"`
	Authenticated bool           `json:"authenticated"`
	// Stale is set when the remote cart could not be read and guest data was served instead.
	Stale bool `json:"stale,omitempty"`
}
