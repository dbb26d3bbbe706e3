package enums

import "fmt"

// CheckoutState is the step a checkout attempt has reached.
type CheckoutState string

const (
	CheckoutStateCollectingAddress     CheckoutState = "collecting_address"
	CheckoutStateCreatingPaymentIntent CheckoutState = "creating_payment_intent"
	CheckoutStateConfirmingPayment     CheckoutState = "confirming_payment"
	CheckoutStateCreatingOrder         CheckoutState = "creating_order"
	CheckoutStateDone                  CheckoutState = "done"
	CheckoutStateFailed                CheckoutState = "failed"
)

var validCheckoutStates = []CheckoutState{
	CheckoutStateCollectingAddress,
	CheckoutStateCreatingPaymentIntent,
	CheckoutStateConfirmingPayment,
	CheckoutStateCreatingOrder,
	CheckoutStateDone,
	CheckoutStateFailed,
}

// String implements fmt.Stringer.
func (c CheckoutState) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutState.
func (c CheckoutState) IsValid() bool {
	for _, candidate := range validCheckoutStates {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from c.
func (c CheckoutState) IsTerminal() bool {
	return c == CheckoutStateDone || c == CheckoutStateFailed
}

// ParseCheckoutState converts raw input into a CheckoutState.
func ParseCheckoutState(value string) (CheckoutState, error) {
	for _, candidate := range validCheckoutStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout state %q", value)
}
