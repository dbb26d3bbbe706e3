package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bhargavsatvara/zyqora-storefront/api/middleware"
	"github.com/bhargavsatvara/zyqora-storefront/api/responses"
	"github.com/bhargavsatvara/zyqora-storefront/api/validators"
	"github.com/bhargavsatvara/zyqora-storefront/internal/catalog"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/enums"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/pagination"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

const maxFilterLen = 120

// ProductList returns one page of the catalog with ratings filled in.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		filter, err := parseProductFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListProducts(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseProductFilter(r *http.Request) (types.ProductFilter, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
	if err != nil {
		return types.ProductFilter{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return types.ProductFilter{}, err
	}
	minPrice, err := validators.ParseQueryPrice(r, "min_price")
	if err != nil {
		return types.ProductFilter{}, err
	}
	maxPrice, err := validators.ParseQueryPrice(r, "max_price")
	if err != nil {
		return types.ProductFilter{}, err
	}

	return types.ProductFilter{
		Search:     validators.QueryString(r, "search", maxFilterLen),
		Category:   validators.QueryString(r, "category", maxFilterLen),
		Brand:      validators.QueryString(r, "brand", maxFilterLen),
		Department: validators.QueryString(r, "department", maxFilterLen),
		Color:      validators.QueryString(r, "color", maxFilterLen),
		Size:       validators.QueryString(r, "size", maxFilterLen),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Sort:       validators.QueryString(r, "sort", maxFilterLen),
		Page:       page,
		Limit:      limit,
	}, nil
}

func ProductFeatured(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		products, err := svc.Featured(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": products})
	}
}

func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		product, err := svc.GetProduct(r.Context(), strings.TrimSpace(chi.URLParam(r, "id")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// LookupList serves reference lists. States take ?country=, cities take ?state=.
func LookupList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		kind := enums.LookupKind(strings.ToLower(chi.URLParam(r, "kind")))
		parent := ""
		if param := kind.ParentParam(); param != "" {
			parent = validators.QueryString(r, param, maxFilterLen)
		}

		items, err := svc.Lookup(r.Context(), kind, parent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

func ReviewList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		summary, err := svc.Reviews(r.Context(), strings.TrimSpace(chi.URLParam(r, "productId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func ReviewCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body catalog.AddReviewRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, err := svc.AddReview(r.Context(), middleware.SessionIDFromContext(r.Context()), strings.TrimSpace(chi.URLParam(r, "productId")), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}
