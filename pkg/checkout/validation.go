// Package checkout holds the pre-flight checks run on a cart snapshot and the
// billing address before any payment is attempted.
package checkout

import (
	"fmt"

	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/validate"
)

// LineViolationDetail exposes the data returned to callers when a line cannot be ordered.
type LineViolationDetail struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name,omitempty"`
	Size         string `json:"size,omitempty"`
	Color        string `json:"color,omitempty"`
	Available    *int   `json:"available,omitempty"`
	RequestedQty int    `json:"requested_qty"`
}

// ValidateCart ensures the snapshot is orderable: at least one line, positive
// quantities and no quantity above the known stock.
func ValidateCart(items []types.CartLineItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}
	var invalid, short []LineViolationDetail
	for _, item := range items {
		detail := LineViolationDetail{
			ProductID:    item.ProductID,
			ProductName:  item.Name,
			Size:         item.Size,
			Color:        item.Color,
			Available:    item.StockQuantity,
			RequestedQty: item.Quantity,
		}
		switch {
		case item.ProductID == "" || item.Quantity < 1:
			invalid = append(invalid, detail)
		case item.StockQuantity != nil && item.Quantity > *item.StockQuantity:
			short = append(short, detail)
		}
	}
	if len(invalid) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%d cart line(s) are invalid", len(invalid))).WithDetails(map[string]any{
			"violations": invalid,
		})
	}
	if len(short) > 0 {
		return pkgerrors.New(pkgerrors.CodeOutOfStock, fmt.Sprintf("not enough stock for %d item(s)", len(short))).WithDetails(map[string]any{
			"violations": short,
		})
	}
	return nil
}

// ValidateAddress normalizes addr in place and checks the required fields.
func ValidateAddress(addr *types.BillingAddress) error {
	if addr == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "billing address is required")
	}
	addr.Normalize()
	return validate.Struct(addr)
}
