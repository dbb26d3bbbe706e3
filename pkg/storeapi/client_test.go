package storeapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/enums"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Options{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "ftp://example.com", "::"} {
		if _, err := New(Options{BaseURL: raw}); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestStatusMapping(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusUnprocessableEntity, pkgerrors.CodeValidation},
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusForbidden, pkgerrors.CodeForbidden},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusConflict, pkgerrors.CodeConflict},
		{http.StatusPaymentRequired, pkgerrors.CodePayment},
		{http.StatusTooManyRequests, pkgerrors.CodeRateLimit},
		{http.StatusBadGateway, pkgerrors.CodeDependency},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			})
			err := client.AddToCart(context.Background(), "tok", types.CartLineItem{ProductID: "P1", Quantity: 1})
			if !pkgerrors.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			if StatusOf(err) != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, StatusOf(err))
			}
			if pkgerrors.As(err).Message() != "nope" {
				t.Fatalf("backend message should be carried, got %q", pkgerrors.As(err).Message())
			}
		})
	}
}

func TestNonSuccessStatusBelow400IsDependency(t *testing.T) {
	t.Parallel()
	for _, status := range []int{http.StatusNotModified, http.StatusMultipleChoices} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		_, err := client.GetCart(context.Background(), "tok")
		if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			t.Fatalf("status %d: expected dependency error, got %v", status, err)
		}
		if StatusOf(err) != status {
			t.Fatalf("expected status %d, got %d", status, StatusOf(err))
		}
	}
}

func TestTransportFailureIsDependency(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client, err := New(Options{BaseURL: base})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.GetCart(context.Background(), "tok")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if StatusOf(err) != 0 {
		t.Fatalf("no response means no status")
	}
}

func TestAddToCartSendsBearerAndCamelCase(t *testing.T) {
	t.Parallel()
	var gotAuth, gotPath string
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusCreated)
	})

	item := types.CartLineItem{ProductID: "P1", Size: "M", Color: "Red", Quantity: 2, Price: types.MoneyFromFloat(10)}
	if err := client.AddToCart(context.Background(), "tok-1", item); err != nil {
		t.Fatalf("add: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotPath != "/api/cart/add" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if body["productId"] != "P1" || body["quantity"] != float64(2) || body["price"] != float64(10) {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestGuestCallsOmitAuthorization(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("catalog reads must not carry a token")
		}
		_, _ = w.Write([]byte(`[{"_id":"p1","name":"Tee","price":"12.5","category":{"name":"Shirts"},"sizes":["S","M"],"stockQty":3}]`))
	})

	products, err := client.FeaturedProducts(context.Background())
	if err != nil {
		t.Fatalf("featured: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected one product, got %d", len(products))
	}
	p := products[0]
	if p.ID != "p1" || p.Category != "Shirts" || p.Price.Cents() != 1250 {
		t.Fatalf("unexpected product %+v", p)
	}
	if p.StockQuantity == nil || *p.StockQuantity != 3 {
		t.Fatalf("stockQty should populate stock quantity")
	}
}

func TestGetCartDecodesEnvelopeAndTotals(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cart":{"items":[{"productId":"P1","size":"M","color":"Red","quantity":2,"price":10}],"totals":{"subtotal":20,"tax":2,"total":22}}}`))
	})

	cart, err := client.GetCart(context.Background(), "tok")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Key() != types.NewLineKey("P1", "M", "Red") {
		t.Fatalf("unexpected items %+v", cart.Items)
	}
	if cart.Totals == nil || cart.Totals.Total.Cents() != 2200 {
		t.Fatalf("unexpected totals %+v", cart.Totals)
	}
}

func TestGetCartWithoutTotals(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	})
	cart, err := client.GetCart(context.Background(), "tok")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if cart.Totals != nil || len(cart.Items) != 0 {
		t.Fatalf("expected empty cart without totals, got %+v", cart)
	}
}

func TestUpdateAndRemoveIdentifyLineByTriple(t *testing.T) {
	t.Parallel()
	var bodies []map[string]any
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		paths = append(paths, r.URL.Path)
	})

	key := types.NewLineKey("P1", "M", "Red")
	if err := client.UpdateCartItem(context.Background(), "tok", key, 3); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := client.RemoveFromCart(context.Background(), "tok", key); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if paths[0] != "/api/cart/update" || bodies[0]["quantity"] != float64(3) {
		t.Fatalf("unexpected update call %s %v", paths[0], bodies[0])
	}
	if paths[1] != "/api/cart/remove" || bodies[1]["color"] != "Red" {
		t.Fatalf("unexpected remove call %s %v", paths[1], bodies[1])
	}
	if _, ok := bodies[1]["quantity"]; ok {
		t.Fatalf("remove must not send a quantity")
	}
}

func TestClearCartUsesDelete(t *testing.T) {
	t.Parallel()
	var method string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	})
	if err := client.ClearCart(context.Background(), "tok"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if method != http.MethodDelete {
		t.Fatalf("expected DELETE, got %s", method)
	}
}

func TestGetWishlistAcceptsIDsAndProducts(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":["p1",{"_id":"p2","name":"Cap","images":["cap.png"],"price":9},{"productId":"p3"},""]}`))
	})

	items, err := client.GetWishlist(context.Background(), "tok")
	if err != nil {
		t.Fatalf("wishlist: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 entries, got %+v", items)
	}
	if items[0].ID != "p1" || items[0].Resolved() {
		t.Fatalf("bare id should be unresolved: %+v", items[0])
	}
	if items[1].ID != "p2" || items[1].CachedImage != "cap.png" || items[1].CachedPrice == nil {
		t.Fatalf("populated product should carry cached fields: %+v", items[1])
	}
	if items[2].ID != "p3" {
		t.Fatalf("productId fallback failed: %+v", items[2])
	}
}

func TestRemoveFromWishlistEscapesID(t *testing.T) {
	t.Parallel()
	var rawPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
	})
	if err := client.RemoveFromWishlist(context.Background(), "tok", "a/b"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if rawPath != "/api/wishlist/remove/a%2Fb" {
		t.Fatalf("unexpected path %q", rawPath)
	}
}

func TestCreateOrderSendsIdempotencyKey(t *testing.T) {
	t.Parallel()
	var gotKey string
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"order":{"_id":"o1","orderNumber":"Z-100","status":"paid","subtotal":20,"tax":2,"total":22}}`))
	})

	req := CheckoutRequest{
		BillingAddress: types.BillingAddress{Name: "Ada", ZipCode: "10001"},
		Items:          []types.CartLineItem{{ProductID: "P1", Quantity: 2, Price: types.MoneyFromFloat(10)}},
	}
	order, err := client.CreateOrder(context.Background(), "tok", "idem-1", req, "pi_123")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if gotKey != "idem-1" {
		t.Fatalf("expected idempotency key, got %q", gotKey)
	}
	if body["paymentIntentId"] != "pi_123" {
		t.Fatalf("payment intent id missing: %v", body)
	}
	address, _ := body["billingAddress"].(map[string]any)
	if address["zipCode"] != "10001" {
		t.Fatalf("billing address should be camelCase: %v", address)
	}
	if order.ID != "o1" || order.Number != "Z-100" || order.Totals.Total.Cents() != 2200 {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestCreatePaymentIntentRequiresSecret(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	_, err := client.CreatePaymentIntent(context.Background(), "tok", CheckoutRequest{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestGetInvoiceReturnsRawDocument(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})
	invoice, err := client.GetInvoice(context.Background(), "tok", "o1")
	if err != nil {
		t.Fatalf("invoice: %v", err)
	}
	if invoice.Filename != "invoice-o1.pdf" || string(invoice.Body) != "%PDF-1.4" {
		t.Fatalf("unexpected invoice %+v", invoice)
	}
}

func TestLookupScopesDependentLists(t *testing.T) {
	t.Parallel()
	var query string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"states":[{"_id":"s1","name":"Ontario","code":"ON"}]}`))
	})
	items, err := client.Lookup(context.Background(), enums.LookupStates, "CA")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if query != "country=CA" {
		t.Fatalf("unexpected query %q", query)
	}
	if len(items) != 1 || items[0].Code != "ON" {
		t.Fatalf("unexpected items %+v", items)
	}

	if _, err := client.Lookup(context.Background(), enums.LookupKind("planets"), ""); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("unknown lookup should be a validation error, got %v", err)
	}
}

func TestListProductsForwardsFilters(t *testing.T) {
	t.Parallel()
	var got string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Encode()
		_, _ = w.Write([]byte(`{"products":[{"id":"p1","name":"Tee","price":5}],"total":1,"page":2,"pages":3}`))
	})
	page, err := client.ListProducts(context.Background(), types.ProductFilter{Search: "tee", Page: 2, Limit: 12})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got != "limit=12&page=2&search=tee" {
		t.Fatalf("unexpected query %q", got)
	}
	if page.Page != 2 || page.Pages != 3 || len(page.Products) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestProductReviewsComputesAverageWhenMissing(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"r1","rating":4,"user":{"name":"Ann"}},{"_id":"r2","rating":2,"userName":"Bo"}]`))
	})
	summary, err := client.ProductReviews(context.Background(), "p1")
	if err != nil {
		t.Fatalf("reviews: %v", err)
	}
	if summary.Count != 2 || summary.AverageRating != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Reviews[0].UserName != "Ann" || summary.Reviews[0].ProductID != "p1" {
		t.Fatalf("unexpected review %+v", summary.Reviews[0])
	}
}

func TestLoginDecodesSession(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"jwt","user":{"_id":"u1","name":"Ada","email":"ada@example.com"}}`))
	})
	session, err := client.Login(context.Background(), "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token != "jwt" || session.User.ID != "u1" {
		t.Fatalf("unexpected session %+v", session)
	}
}
