package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cartsvc "github.com/bhargavsatvara/zyqora-storefront/internal/cart"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

type stubCartService struct {
	cart       types.Cart
	err        error
	sessionID  string
	added      types.CartLineItem
	updatedKey types.LineKey
	updatedQty int
	removedKey types.LineKey
	cleared    bool
}

func (s *stubCartService) Get(_ context.Context, sessionID string) (types.Cart, error) {
	s.sessionID = sessionID
	return s.cart, s.err
}

func (s *stubCartService) Refresh(_ context.Context, sessionID string) (types.Cart, error) {
	s.sessionID = sessionID
	return s.cart, s.err
}

func (s *stubCartService) Add(_ context.Context, sessionID string, item types.CartLineItem) (types.Cart, error) {
	s.sessionID, s.added = sessionID, item
	return s.cart, s.err
}

func (s *stubCartService) Update(_ context.Context, sessionID string, key types.LineKey, quantity int) (types.Cart, error) {
	s.sessionID, s.updatedKey, s.updatedQty = sessionID, key, quantity
	return s.cart, s.err
}

func (s *stubCartService) Remove(_ context.Context, sessionID string, key types.LineKey) (types.Cart, error) {
	s.sessionID, s.removedKey = sessionID, key
	return s.cart, s.err
}

func (s *stubCartService) Clear(_ context.Context, sessionID string) (types.Cart, error) {
	s.sessionID, s.cleared = sessionID, true
	return types.Cart{Items: []types.CartLineItem{}}, s.err
}

func (s *stubCartService) MergeLocal(context.Context, string) (cartsvc.MergeReport, error) {
	return cartsvc.MergeReport{}, nil
}

func (s *stubCartService) Invalidate(string) {}

func (s *stubCartService) Sweep(time.Duration) int { return 0 }

func TestCartFetchReturnsVisitorCart(t *testing.T) {
	t.Parallel()
	svc := &stubCartService{cart: types.Cart{Items: []types.CartLineItem{{ProductID: "P1", Quantity: 2}}}}
	resp := httptest.NewRecorder()
	CartFetch(svc, nil).ServeHTTP(resp, newSessionRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.sessionID != "sess-1" {
		t.Fatalf("expected session id from context, got %q", svc.sessionID)
	}
	var cart types.Cart
	decodeData(t, resp, &cart)
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart %+v", cart)
	}
}

func TestCartAddItemValidatesBody(t *testing.T) {
	t.Parallel()
	svc := &stubCartService{}
	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, newSessionRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":"P1","quantity":0}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	env := decodeError(t, resp)
	if env.Error.Details["quantity"] == nil {
		t.Fatalf("expected quantity detail, got %+v", env.Error.Details)
	}
	if svc.added.ProductID != "" {
		t.Fatalf("service must not be called on invalid input")
	}
}

func TestCartAddItemForwardsItem(t *testing.T) {
	t.Parallel()
	svc := &stubCartService{}
	resp := httptest.NewRecorder()
	CartAddItem(svc, nil).ServeHTTP(resp, newSessionRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":"P1","price":"9.99","size":"M","color":"Red","quantity":3}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.added.Key() != types.NewLineKey("P1", "M", "Red") || svc.added.Quantity != 3 || svc.added.Price.Cents() != 999 {
		t.Fatalf("unexpected item %+v", svc.added)
	}
}

func TestCartUpdateItemPassesZeroQuantity(t *testing.T) {
	t.Parallel()
	svc := &stubCartService{}
	resp := httptest.NewRecorder()
	CartUpdateItem(svc, nil).ServeHTTP(resp, newSessionRequest(http.MethodPatch, "/api/v1/cart/items", `{"product_id":"P1","size":"M","quantity":0}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.updatedKey != types.NewLineKey("P1", "M", "") || svc.updatedQty != 0 {
		t.Fatalf("unexpected update %+v qty=%d", svc.updatedKey, svc.updatedQty)
	}
}

func TestCartRemoveItemSurfacesServiceError(t *testing.T) {
	t.Parallel()
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeDependency, "commerce backend unreachable")}
	resp := httptest.NewRecorder()
	CartRemoveItem(svc, nil).ServeHTTP(resp, newSessionRequest(http.MethodDelete, "/api/v1/cart/items", `{"product_id":"P1"}`))

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected dependency status got %d", resp.Code)
	}
	if svc.removedKey.ProductID != "P1" {
		t.Fatalf("expected remove to reach the service")
	}
	if env := decodeError(t, resp); env.Error.Message != "commerce backend unreachable" {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}
}

func TestCartClear(t *testing.T) {
	t.Parallel()
	svc := &stubCartService{}
	resp := httptest.NewRecorder()
	CartClear(svc, nil).ServeHTTP(resp, newSessionRequest(http.MethodDelete, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK || !svc.cleared {
		t.Fatalf("expected cleared cart, status %d", resp.Code)
	}
}
