package enums

import "testing"

func TestCheckoutStateParsing(t *testing.T) {
	state, err := ParseCheckoutState("confirming_payment")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != CheckoutStateConfirmingPayment {
		t.Fatalf("unexpected state %s", state)
	}
	if _, err := ParseCheckoutState("shipping"); err == nil {
		t.Fatalf("expected error for unknown state")
	}
	if !CheckoutStateFailed.IsTerminal() || !CheckoutStateDone.IsTerminal() {
		t.Fatalf("done and failed must be terminal")
	}
	if CheckoutStateCreatingOrder.IsTerminal() {
		t.Fatalf("creating_order is not terminal")
	}
}

func TestLookupKindParentParam(t *testing.T) {
	if LookupStates.ParentParam() != "country" {
		t.Fatalf("states should be scoped by country")
	}
	if LookupCities.ParentParam() != "state" {
		t.Fatalf("cities should be scoped by state")
	}
	if LookupBrands.ParentParam() != "" {
		t.Fatalf("brands are unscoped")
	}
	if _, err := ParseLookupKind("planets"); err == nil {
		t.Fatalf("expected unknown lookup to fail")
	}
}

func TestSessionEventKindValidity(t *testing.T) {
	if !SessionEventLoggedIn.IsValid() || !SessionEventLoggedOut.IsValid() {
		t.Fatalf("known kinds must be valid")
	}
	if SessionEventKind("session.expired").IsValid() {
		t.Fatalf("unknown kind must be invalid")
	}
}

func TestParseSessionEventKind(t *testing.T) {
	kind, err := ParseSessionEventKind("session.logged_out")
	if err != nil || kind != SessionEventLoggedOut {
		t.Fatalf("unexpected parse result %q err=%v", kind, err)
	}
	if _, err := ParseSessionEventKind("logged_out"); err == nil {
		t.Fatalf("expected error for unprefixed kind")
	}
}
