package controllers

import (
	"net/http"

	"github.com/bhargavsatvara/zyqora-storefront/api/middleware"
	"github.com/bhargavsatvara/zyqora-storefront/api/responses"
	"github.com/bhargavsatvara/zyqora-storefront/api/validators"
	"github.com/bhargavsatvara/zyqora-storefront/internal/checkout"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
)

// CheckoutSubmit runs the checkout state machine. On failure the error is
// returned and the attempt (with its failed step) stays readable via GET.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body checkout.SubmitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		attempt, err := svc.Submit(r.Context(), middleware.SessionIDFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, attempt)
	}
}

func CheckoutCurrent(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		attempt, err := svc.Current(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, attempt)
	}
}
