package checkout

import (
	"time"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/enums"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

// SubmitRequest is the checkout form: the billing address plus the card
// payment method tokenized in the browser. Both are validated by Submit, which
// accepts an empty form when resuming a paid attempt and falls back to the
// stored address when retrying an unfinished one.
type SubmitRequest struct {
	BillingAddress  types.BillingAddress `json:"billing_address" validate:"-"`
	PaymentMethodID string               `json:"payment_method_id"`
}

// Attempt is the visitor's latest checkout attempt. It is kept after a failure
// so a retry does not need the address again.
type Attempt struct {
	ID               string               `json:"id,omitempty"`
	State            enums.CheckoutState  `json:"state"`
	BillingAddress   types.BillingAddress `json:"billing_address"`
	Items            []types.CartLineItem `json:"items,omitempty"`
	Totals           types.CartTotals     `json:"totals"`
	PaymentIntentID  string               `json:"payment_intent_id,omitempty"`
	PaymentConfirmed bool                 `json:"payment_confirmed"`
	IdempotencyKey   string               `json:"idempotency_key,omitempty"`
	FailedStep       enums.CheckoutState  `json:"failed_step,omitempty"`
	FailureReason    string               `json:"failure_reason,omitempty"`
	Order            *types.Order         `json:"order,omitempty"`
	UpdatedAt        time.Time            `json:"updated_at"`

	// RedirectAfterMS is set once the order exists; the UI navigates away after it.
	RedirectAfterMS int64 `json:"redirect_after_ms,omitempty"`
}

// record is the persisted form of an attempt; the client secret stays server side.
type record struct {
	Attempt
	ClientSecret string `json:"client_secret,omitempty"`
}

// resumable reports whether the next submit should skip straight to order creation.
func (r *record) resumable() bool {
	return r.PaymentConfirmed && r.State != enums.CheckoutStateDone && r.PaymentIntentID != ""
}
