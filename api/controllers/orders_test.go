package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/config"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

type stubOrdersService struct {
	invoice *types.Invoice
	err     error
}

func (s stubOrdersService) List(context.Context, string) (*types.OrderList, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.OrderList{Orders: []types.Order{{ID: "o1"}}}, nil
}

func (s stubOrdersService) Get(_ context.Context, _ string, id string) (*types.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.Order{ID: id}, nil
}

func (s stubOrdersService) Invoice(context.Context, string, string) (*types.Invoice, error) {
	return s.invoice, s.err
}

func TestOrderListRequiresSignIn(t *testing.T) {
	t.Parallel()
	resp := httptest.NewRecorder()
	OrderList(stubOrdersService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view orders")}, nil).
		ServeHTTP(resp, newSessionRequest(http.MethodGet, "/api/v1/orders", ""))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOrderDetail(t *testing.T) {
	t.Parallel()
	resp := httptest.NewRecorder()
	OrderDetail(stubOrdersService{}, nil).ServeHTTP(resp, withURLParams(newSessionRequest(http.MethodGet, "/api/v1/orders/o9", ""), "id", "o9"))

	var order types.Order
	decodeData(t, resp, &order)
	if order.ID != "o9" {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestOrderInvoiceDownload(t *testing.T) {
	t.Parallel()
	svc := stubOrdersService{invoice: &types.Invoice{OrderID: "o9", ContentType: "application/pdf", Body: []byte("%PDF-1.4")}}
	resp := httptest.NewRecorder()
	OrderInvoice(svc, nil).ServeHTTP(resp, withURLParams(newSessionRequest(http.MethodGet, "/api/v1/orders/o9/invoice", ""), "id", "o9"))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Disposition"); got != `attachment; filename="invoice-o9.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if resp.Body.String() != "%PDF-1.4" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}

	ok := httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"redis": stubPinger{}, "db": nil}).
		ServeHTTP(ok, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", ok.Code)
	}

	down := httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"redis": stubPinger{}, "db": stubPinger{err: errors.New("refused")}}).
		ServeHTTP(down, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if down.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", down.Code)
	}
	env := decodeError(t, down)
	checks, _ := env.Error.Details["checks"].(map[string]any)
	if checks["db"] != "down" || checks["redis"] != "ok" {
		t.Fatalf("unexpected checks %+v", env.Error.Details)
	}
}
