package storeapi

import (
	"context"
	"net/http"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

// RemoteCart is the backend's view of an authenticated cart. Totals is nil when
// the backend did not send any.
type RemoteCart struct {
	Items  []types.CartLineItem
	Totals *types.CartTotals
}

type wireCart struct {
	Items  []wireLineItem `json:"items"`
	Totals *wireTotals    `json:"totals"`
}

func (c *Client) GetCart(ctx context.Context, token string) (RemoteCart, error) {
	resp, err := c.send(ctx, call{method: http.MethodGet, path: "/cart", token: token})
	if err != nil {
		return RemoteCart{}, err
	}
	var out wireCart
	if err := unwrap(resp.body, &out, "cart"); err != nil {
		return RemoteCart{}, decodeError("/cart", err)
	}
	cart := RemoteCart{Items: fromWireLines(out.Items)}
	if out.Totals != nil {
		totals := out.Totals.domain()
		cart.Totals = &totals
	}
	return cart, nil
}

func (c *Client) AddToCart(ctx context.Context, token string, item types.CartLineItem) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/cart/add", token: token, body: toWireLine(item)}, nil)
}

type wireLineRef struct {
	ProductID string `json:"productId"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  *int   `json:"quantity,omitempty"`
}

func (c *Client) UpdateCartItem(ctx context.Context, token string, key types.LineKey, quantity int) error {
	body := wireLineRef{ProductID: key.ProductID, Size: key.Size, Color: key.Color, Quantity: &quantity}
	return c.do(ctx, call{method: http.MethodPost, path: "/cart/update", token: token, body: body}, nil)
}

// RemoveFromCart removes the line identified by its product/size/color triple.
func (c *Client) RemoveFromCart(ctx context.Context, token string, key types.LineKey) error {
	body := wireLineRef{ProductID: key.ProductID, Size: key.Size, Color: key.Color}
	return c.do(ctx, call{method: http.MethodPost, path: "/cart/remove", token: token, body: body}, nil)
}

func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/cart", token: token}, nil)
}
