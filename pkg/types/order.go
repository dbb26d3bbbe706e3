package types

import "strings"

// BillingAddress is collected during checkout and forwarded to the order endpoints.
type BillingAddress struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address string `json:"address" validate:"required,max=255"`
	Country string `json:"country,omitempty"`
	State   string `json:"state,omitempty"`
	City    string `json:"city" validate:"required"`
	ZipCode string `json:"zip_code" validate:"required,max=16"`
}

// Normalize trims whitespace in place.
func (a *BillingAddress) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.Phone = strings.TrimSpace(a.Phone)
	a.Address = strings.TrimSpace(a.Address)
	a.Country = strings.TrimSpace(a.Country)
	a.State = strings.TrimSpace(a.State)
	a.City = strings.TrimSpace(a.City)
	a.ZipCode = strings.TrimSpace(a.ZipCode)
}

// IsEmpty reports whether every field is blank.
func (a BillingAddress) IsEmpty() bool {
	for _, v := range []string{a.Name, a.Email, a.Phone, a.Address, a.Country, a.State, a.City, a.ZipCode} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type Order struct {
	ID              string         `json:"id"`
	Number          string         `json:"number,omitempty"`
	Status          string         `json:"status"`
	PaymentStatus   string         `json:"payment_status,omitempty"`
	PaymentIntentID string         `json:"payment_intent_id,omitempty"`
	Items           []CartLineItem `json:"items"`
	Totals          CartTotals     `json:"totals"`
	BillingAddress  BillingAddress `json:"billing_address"`
	CreatedAt       string         `json:"created_at,omitempty"`
}

type OrderList struct {
	Orders []Order `json:"orders"`
}

// Invoice is the rendered invoice document for an order.
type Invoice struct {
	OrderID     string `json:"order_id"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
	Body        []byte `json:"-"`
}
