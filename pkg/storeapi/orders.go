package storeapi

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

// CheckoutRequest is the cart snapshot submitted to open a payment intent.
type CheckoutRequest struct {
	BillingAddress types.BillingAddress
	Items          []types.CartLineItem
	Totals         types.CartTotals
}

type wireCheckout struct {
	BillingAddress  wireAddress    `json:"billingAddress"`
	Items           []wireLineItem `json:"items"`
	Totals          wireTotals     `json:"totals"`
	PaymentIntentID string         `json:"paymentIntentId,omitempty"`
}

func toWireCheckout(req CheckoutRequest) wireCheckout {
	return wireCheckout{
		BillingAddress: toWireAddress(req.BillingAddress),
		Items:          toWireLines(req.Items),
		Totals:         toWireTotals(req.Totals),
	}
}

// CreatePaymentIntent posts the snapshot to /orders/checkout and returns the payment client secret.
func (c *Client) CreatePaymentIntent(ctx context.Context, token string, req CheckoutRequest) (string, error) {
	var out struct {
		ClientSecret string `json:"clientSecret"`
	}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/orders/checkout", token: token, body: toWireCheckout(req)}, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.ClientSecret) == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "checkout response did not include a payment client secret")
	}
	return out.ClientSecret, nil
}

// CreateOrder records a paid order. idempotencyKey is echoed so a retried call cannot create a duplicate.
func (c *Client) CreateOrder(ctx context.Context, token, idempotencyKey string, req CheckoutRequest, paymentIntentID string) (types.Order, error) {
	body := toWireCheckout(req)
	body.PaymentIntentID = paymentIntentID

	in := call{method: http.MethodPost, path: "/orders/create", token: token, body: body}
	if idempotencyKey != "" {
		in.headers = map[string]string{headerIdempotencyKey: idempotencyKey}
	}
	resp, err := c.send(ctx, in)
	if err != nil {
		return types.Order{}, err
	}
	var out wireOrder
	if err := unwrap(resp.body, &out, "order", "data"); err != nil {
		return types.Order{}, decodeError("/orders/create", err)
	}
	return out.domain(), nil
}

func (c *Client) ListOrders(ctx context.Context, token string) ([]types.Order, error) {
	resp, err := c.send(ctx, call{method: http.MethodGet, path: "/orders", token: token})
	if err != nil {
		return nil, err
	}
	var raw []wireOrder
	if err := unwrap(resp.body, &raw, "orders", "data"); err != nil {
		return nil, decodeError("/orders", err)
	}
	out := make([]types.Order, 0, len(raw))
	for _, order := range raw {
		out = append(out, order.domain())
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, token, id string) (types.Order, error) {
	resp, err := c.send(ctx, call{method: http.MethodGet, path: "/orders/" + url.PathEscape(id), route: "/orders/:id", token: token})
	if err != nil {
		return types.Order{}, err
	}
	var out wireOrder
	if err := unwrap(resp.body, &out, "order", "data"); err != nil {
		return types.Order{}, decodeError("/orders/:id", err)
	}
	return out.domain(), nil
}

// GetInvoice downloads the rendered invoice for an order as-is.
func (c *Client) GetInvoice(ctx context.Context, token, id string) (types.Invoice, error) {
	resp, err := c.send(ctx, call{
		method:  http.MethodGet,
		path:    "/orders/" + url.PathEscape(id) + "/invoice",
		route:   "/orders/:id/invoice",
		token:   token,
		headers: map[string]string{"Accept": "application/pdf, text/html;q=0.9, */*;q=0.1"},
	})
	if err != nil {
		return types.Invoice{}, err
	}

	contentType := resp.contentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return types.Invoice{
		OrderID:     id,
		ContentType: contentType,
		Filename:    fmt.Sprintf("invoice-%s%s", id, extensionFor(contentType)),
		Body:        resp.body,
	}, nil
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mediaType {
	case "application/pdf":
		return ".pdf"
	case "text/html":
		return ".html"
	case "application/json":
		return ".json"
	default:
		return ""
	}
}
