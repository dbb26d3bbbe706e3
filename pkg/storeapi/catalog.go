package storeapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/enums"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

func (c *Client) ListProducts(ctx context.Context, filter types.ProductFilter) (types.ProductPage, error) {
	resp, err := c.send(ctx, call{method: http.MethodGet, path: "/products", query: productQuery(filter)})
	if err != nil {
		return types.ProductPage{}, err
	}

	var page struct {
		Products []wireProduct `json:"products"`
		Total    int           `json:"total"`
		Page     int           `json:"page"`
		Pages    int           `json:"pages"`
	}
	if len(resp.body) > 0 && resp.body[0] == '[' {
		if err := unwrap(resp.body, &page.Products); err != nil {
			return types.ProductPage{}, decodeError("/products", err)
		}
		page.Total = len(page.Products)
		page.Page = 1
		page.Pages = 1
	} else if err := unwrap(resp.body, &page); err != nil {
		return types.ProductPage{}, decodeError("/products", err)
	}

	return types.ProductPage{
		Products: fromWireProducts(page.Products),
		Total:    page.Total,
		Page:     page.Page,
		Pages:    page.Pages,
	}, nil
}

func productQuery(f types.ProductFilter) url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("search", f.Search)
	set("category", f.Category)
	set("brand", f.Brand)
	set("department", f.Department)
	set("color", f.Color)
	set("size", f.Size)
	set("minPrice", f.MinPrice)
	set("maxPrice", f.MaxPrice)
	set("sort", f.Sort)
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

func (c *Client) GetProduct(ctx context.Context, id string) (types.Product, error) {
	resp, err := c.send(ctx, call{method: http.MethodGet, path: "/products/" + url.PathEscape(id), route: "/products/:id"})
	if err != nil {
		return types.Product{}, err
	}
	var out wireProduct
	if err := unwrap(resp.body, &out, "product", "data"); err != nil {
		return types.Product{}, decodeError("/products/:id", err)
	}
	return out.domain(), nil
}

func (c *Client) FeaturedProducts(ctx context.Context) ([]types.Product, error) {
	resp, err := c.send(ctx, call{method: http.MethodGet, path: "/products/featured"})
	if err != nil {
		return nil, err
	}
	var out []wireProduct
	if err := unwrap(resp.body, &out, "products", "data"); err != nil {
		return nil, decodeError("/products/featured", err)
	}
	return fromWireProducts(out), nil
}

// Lookup fetches a reference list. parent scopes states by country and cities by state.
func (c *Client) Lookup(ctx context.Context, kind enums.LookupKind, parent string) ([]types.LookupItem, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown lookup "+kind.String())
	}
	in := call{method: http.MethodGet, path: "/" + kind.String()}
	if param := kind.ParentParam(); param != "" && parent != "" {
		in.query = url.Values{param: []string{parent}}
	}

	resp, err := c.send(ctx, in)
	if err != nil {
		return nil, err
	}
	var raw []wireLookup
	if err := unwrap(resp.body, &raw, kind.String(), "data", "items"); err != nil {
		return nil, decodeError(in.path, err)
	}
	out := make([]types.LookupItem, 0, len(raw))
	for _, item := range raw {
		out = append(out, types.LookupItem{ID: item.value(), Name: item.Name, Code: item.Code})
	}
	return out, nil
}

func decodeError(route string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, &Error{Status: http.StatusOK, Route: route, cause: err}, "unexpected response from commerce backend")
}
