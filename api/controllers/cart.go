package controllers

import (
	"net/http"

	"github.com/bhargavsatvara/zyqora-storefront/api/middleware"
	"github.com/bhargavsatvara/zyqora-storefront/api/responses"
	"github.com/bhargavsatvara/zyqora-storefront/api/validators"
	cartsvc "github.com/bhargavsatvara/zyqora-storefront/internal/cart"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

type cartLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (c cartLineRequest) key() types.LineKey {
	return types.NewLineKey(c.ProductID, c.Size, c.Color)
}

// A quantity of zero or less removes the line.
type cartUpdateRequest struct {
	cartLineRequest
	Quantity int `json:"quantity"`
}

// CartFetch returns the visitor's cart, guest or remote.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		cart, err := svc.Refresh(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var item types.CartLineItem
		if err := validators.DecodeJSONBody(r, &item); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Add(r.Context(), middleware.SessionIDFromContext(r.Context()), item)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var body cartUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Update(r.Context(), middleware.SessionIDFromContext(r.Context()), body.key(), body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var body cartLineRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Remove(r.Context(), middleware.SessionIDFromContext(r.Context()), body.key())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		cart, err := svc.Clear(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}
