package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bhargavsatvara/zyqora-storefront/api/middleware"
	"github.com/bhargavsatvara/zyqora-storefront/api/responses"
	"github.com/bhargavsatvara/zyqora-storefront/api/validators"
	"github.com/bhargavsatvara/zyqora-storefront/internal/wishlist"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
)

type wishlistAddRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

func WishlistFetch(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}
		list, err := svc.Refresh(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// WishlistContains backs the heart toggle on product cards.
func WishlistContains(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}
		productID := chi.URLParam(r, "productId")
		found, err := svc.Contains(r.Context(), middleware.SessionIDFromContext(r.Context()), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"product_id": productID, "in_wishlist": found})
	}
}

func WishlistAdd(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		var body wishlistAddRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.Add(r.Context(), middleware.SessionIDFromContext(r.Context()), body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func WishlistRemove(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}
		list, err := svc.Remove(r.Context(), middleware.SessionIDFromContext(r.Context()), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
