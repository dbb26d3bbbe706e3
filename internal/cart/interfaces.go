package cart

import (
	"context"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/storeapi"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

// Remote is the authenticated cart surface of the commerce backend.
type Remote interface {
	GetCart(ctx context.Context, token string) (storeapi.RemoteCart, error)
	AddToCart(ctx context.Context, token string, item types.CartLineItem) error
	UpdateCartItem(ctx context.Context, token string, key types.LineKey, quantity int) error
	RemoveFromCart(ctx context.Context, token string, key types.LineKey) error
	ClearCart(ctx context.Context, token string) error
}
