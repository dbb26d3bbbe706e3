package checkout

import (
	"context"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/storeapi"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/stripe"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

// Cart is the slice of the cart service checkout needs.
type Cart interface {
	Refresh(ctx context.Context, sessionID string) (types.Cart, error)
	Clear(ctx context.Context, sessionID string) (types.Cart, error)
}

// Orders opens payment intents and records paid orders on the backend.
type Orders interface {
	CreatePaymentIntent(ctx context.Context, token string, req storeapi.CheckoutRequest) (string, error)
	CreateOrder(ctx context.Context, token, idempotencyKey string, req storeapi.CheckoutRequest, paymentIntentID string) (types.Order, error)
}

// PaymentConfirmer confirms a payment intent with the provider.
type PaymentConfirmer interface {
	Confirm(ctx context.Context, clientSecret, paymentMethodID, receiptEmail string) (stripe.Confirmation, error)
	Status(ctx context.Context, paymentIntentID string) (stripe.Confirmation, error)
}
