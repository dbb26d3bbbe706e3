package wishlist

import (
	"context"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

// Remote is the authenticated wishlist surface of the commerce backend.
type Remote interface {
	GetWishlist(ctx context.Context, token string) ([]types.WishlistEntry, error)
	AddToWishlist(ctx context.Context, token, productID string) error
	RemoveFromWishlist(ctx context.Context, token, productID string) error
}

// Catalog resolves display fields for entries that only carry an id.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (types.Product, error)
}
