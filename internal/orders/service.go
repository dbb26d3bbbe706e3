// Package orders reads a signed-in visitor's order history and invoices.
package orders

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/kvstore"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

// Backend is the order history part of the commerce API.
type Backend interface {
	ListOrders(ctx context.Context, token string) ([]types.Order, error)
	GetOrder(ctx context.Context, token, id string) (types.Order, error)
	GetInvoice(ctx context.Context, token, id string) (types.Invoice, error)
}

// Service exposes order reads for the HTTP layer.
type Service interface {
	List(ctx context.Context, sessionID string) (*types.OrderList, error)
	Get(ctx context.Context, sessionID, orderID string) (*types.Order, error)
	Invoice(ctx context.Context, sessionID, orderID string) (*types.Invoice, error)
}

type service struct {
	store   kvstore.Store
	backend Backend
}

// NewService constructs an orders service.
func NewService(store kvstore.Store, backend Backend) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("guest store required")
	}
	if backend == nil {
		return nil, fmt.Errorf("orders backend required")
	}
	return &service{store: store, backend: backend}, nil
}

// List returns the visitor's orders; none is an empty list.
func (s *service) List(ctx context.Context, sessionID string) (*types.OrderList, error) {
	token, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	orders, err := s.backend.ListOrders(ctx, token)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []types.Order{}
	}
	return &types.OrderList{Orders: orders}, nil
}

func (s *service) Get(ctx context.Context, sessionID, orderID string) (*types.Order, error) {
	orderID, err := requireOrderID(orderID)
	if err != nil {
		return nil, err
	}
	token, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	order, err := s.backend.GetOrder(ctx, token, orderID)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *service) Invoice(ctx context.Context, sessionID, orderID string) (*types.Invoice, error) {
	orderID, err := requireOrderID(orderID)
	if err != nil {
		return nil, err
	}
	token, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	invoice, err := s.backend.GetInvoice(ctx, token, orderID)
	if err != nil {
		return nil, err
	}
	if len(invoice.Body) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "invoice is empty")
	}
	return &invoice, nil
}

func (s *service) token(ctx context.Context, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	token, err := kvstore.GetString(ctx, kvstore.Scope(s.store, sessionID), kvstore.KeyToken)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read token")
	}
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view orders")
	}
	return token, nil
}

func requireOrderID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return id, nil
}
