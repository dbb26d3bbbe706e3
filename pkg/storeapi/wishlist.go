package storeapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

func (c *Client) GetWishlist(ctx context.Context, token string) ([]types.WishlistEntry, error) {
	resp, err := c.send(ctx, call{method: http.MethodGet, path: "/wishlist", token: token})
	if err != nil {
		return nil, err
	}
	var raw []wireWishlistItem
	if err := unwrap(resp.body, &raw, "items", "wishlist", "products"); err != nil {
		return nil, decodeError("/wishlist", err)
	}
	out := make([]types.WishlistEntry, 0, len(raw))
	for _, item := range raw {
		if item.entry.ID == "" {
			continue
		}
		out = append(out, item.entry)
	}
	return out, nil
}

func (c *Client) AddToWishlist(ctx context.Context, token, productID string) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   "/wishlist/add",
		token:  token,
		body:   map[string]string{"productId": productID},
	}, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, token, productID string) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		path:   "/wishlist/remove/" + url.PathEscape(productID),
		route:  "/wishlist/remove/:productId",
		token:  token,
	}, nil)
}
