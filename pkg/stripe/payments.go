package stripe

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"

	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
)

// Confirmation is the provider's verdict on a payment intent.
type Confirmation struct {
	PaymentIntentID string
	Status          string
}

// Succeeded reports whether funds were captured or authorized.
func (c Confirmation) Succeeded() bool {
	return c.Status == string(stripe.PaymentIntentStatusSucceeded) ||
		c.Status == string(stripe.PaymentIntentStatusRequiresCapture) ||
		c.Status == string(stripe.PaymentIntentStatusProcessing)
}

type confirmFunc func(id string, params *stripe.PaymentIntentConfirmParams) (*stripe.PaymentIntent, error)
type getFunc func(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)

// Payments confirms payment intents created by the commerce backend.
type Payments struct {
	confirm confirmFunc
	get     getFunc
}

// NewPayments binds confirmation to the initialized client.
func NewPayments(client *Client) (*Payments, error) {
	if client == nil {
		return nil, errors.New("stripe client required")
	}
	return &Payments{confirm: paymentintent.Confirm, get: paymentintent.Get}, nil
}

// IntentIDFromClientSecret extracts "pi_123" from "pi_123_secret_abc".
func IntentIDFromClientSecret(secret string) (string, error) {
	secret = strings.TrimSpace(secret)
	idx := strings.Index(secret, "_secret_")
	if idx <= 0 || !strings.HasPrefix(secret, "pi_") {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "malformed payment client secret")
	}
	return secret[:idx], nil
}

// Confirm confirms the intent behind clientSecret with the card payment method
// tokenized by the browser. Provider declines come back as PAYMENT_FAILED with
// the provider's message.
func (p *Payments) Confirm(ctx context.Context, clientSecret, paymentMethodID, receiptEmail string) (Confirmation, error) {
	id, err := IntentIDFromClientSecret(clientSecret)
	if err != nil {
		return Confirmation{}, err
	}
	if strings.TrimSpace(paymentMethodID) == "" {
		return Confirmation{}, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethodID),
	}
	if receiptEmail != "" {
		params.ReceiptEmail = stripe.String(receiptEmail)
	}
	params.Context = ctx

	intent, err := p.confirm(id, params)
	if err != nil {
		return Confirmation{PaymentIntentID: id}, providerError(err)
	}
	out := Confirmation{PaymentIntentID: intent.ID, Status: string(intent.Status)}
	if !out.Succeeded() {
		return out, pkgerrors.New(pkgerrors.CodePayment, "payment was not completed (status "+out.Status+")")
	}
	return out, nil
}

// Status looks up an intent. Used when resuming an attempt whose confirmation outcome was lost.
func (p *Payments) Status(ctx context.Context, paymentIntentID string) (Confirmation, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := p.get(paymentIntentID, params)
	if err != nil {
		return Confirmation{PaymentIntentID: paymentIntentID}, providerError(err)
	}
	return Confirmation{PaymentIntentID: intent.ID, Status: string(intent.Status)}, nil
}

func providerError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		msg := strings.TrimSpace(stripeErr.Msg)
		if msg == "" {
			msg = "payment was declined"
		}
		if stripeErr.Type == stripe.ErrorTypeCard || stripeErr.HTTPStatusCode == 402 {
			return pkgerrors.Wrap(pkgerrors.CodePayment, err, msg)
		}
		if stripeErr.Type == stripe.ErrorTypeInvalidRequest {
			return pkgerrors.Wrap(pkgerrors.CodePayment, err, msg)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment provider unavailable")
}

// Unconfigured is used when no Stripe key is set; every confirmation fails.
type Unconfigured struct{}

func (Unconfigured) Confirm(context.Context, string, string, string) (Confirmation, error) {
	return Confirmation{}, pkgerrors.New(pkgerrors.CodeDependency, "payments are not configured")
}

func (Unconfigured) Status(_ context.Context, id string) (Confirmation, error) {
	return Confirmation{PaymentIntentID: id}, pkgerrors.New(pkgerrors.CodeDependency, "payments are not configured")
}
