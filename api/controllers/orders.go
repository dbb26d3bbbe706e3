package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bhargavsatvara/zyqora-storefront/api/middleware"
	"github.com/bhargavsatvara/zyqora-storefront/api/responses"
	"github.com/bhargavsatvara/zyqora-storefront/internal/orders"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
)

func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		list, err := svc.List(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		order, err := svc.Get(r.Context(), middleware.SessionIDFromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderInvoice streams the invoice document as a download.
func OrderInvoice(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID := chi.URLParam(r, "id")
		invoice, err := svc.Invoice(r.Context(), middleware.SessionIDFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filename := invoice.Filename
		if filename == "" {
			filename = "invoice-" + orderID + ".pdf"
		}
		responses.WriteAttachment(w, filename, invoice.ContentType, invoice.Body)
	}
}
