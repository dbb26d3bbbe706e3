package cart

import (
	"github.com/shopspring/decimal"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

// DefaultTaxRate is applied when no rate is configured.
var DefaultTaxRate = decimal.RequireFromString("0.10")

// ComputeTotals derives subtotal, tax and total from the lines. Tax is rounded to cents.
func ComputeTotals(items []types.CartLineItem, taxRate decimal.Decimal) types.CartTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	tax := subtotal.Mul(taxRate).Round(2)
	return types.CartTotals{
		Subtotal: types.NewMoney(subtotal),
		Tax:      types.NewMoney(tax),
		Total:    types.NewMoney(subtotal.Add(tax)),
	}
}

func indexOf(items []types.CartLineItem, key types.LineKey) int {
	for i := range items {
		if items[i].Key() == key {
			return i
		}
	}
	return -1
}

func exceedsStock(quantity int, stock *int) bool {
	return stock != nil && *stock >= 0 && quantity > *stock
}

// sanitize drops lines with quantity <= 0 and folds duplicate keys together.
func sanitize(items []types.CartLineItem) []types.CartLineItem {
	out := make([]types.CartLineItem, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}
		if idx := indexOf(out, item.Key()); idx >= 0 {
			out[idx].Quantity += item.Quantity
			continue
		}
		out = append(out, item)
	}
	return out
}
