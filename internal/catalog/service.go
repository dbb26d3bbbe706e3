// Package catalog serves product listings, reference lookups and reviews from
// the commerce backend.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/enums"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/kvstore"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/pagination"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/validate"
)

const ratingFetchLimit = 8

// Backend is the catalog part of the commerce API.
type Backend interface {
	ListProducts(ctx context.Context, filter types.ProductFilter) (types.ProductPage, error)
	GetProduct(ctx context.Context, id string) (types.Product, error)
	FeaturedProducts(ctx context.Context) ([]types.Product, error)
	Lookup(ctx context.Context, kind enums.LookupKind, parent string) ([]types.LookupItem, error)
	ProductReviews(ctx context.Context, productID string) (types.ReviewSummary, error)
	AddReview(ctx context.Context, token, productID string, rating int, comment string) (types.Review, error)
}

// AddReviewRequest is the review form.
type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

// Service exposes catalog reads and review submission.
type Service interface {
	ListProducts(ctx context.Context, filter types.ProductFilter) (*types.ProductPage, error)
	Featured(ctx context.Context) ([]types.Product, error)
	GetProduct(ctx context.Context, id string) (*types.Product, error)
	Lookup(ctx context.Context, kind enums.LookupKind, parent string) ([]types.LookupItem, error)
	Reviews(ctx context.Context, productID string) (*types.ReviewSummary, error)
	AddReview(ctx context.Context, sessionID, productID string, req AddReviewRequest) (*types.Review, error)
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Backend Backend
	// Store holds visitor tokens; also used as the lookup cache when LookupTTL is set.
	Store     kvstore.Store
	LookupTTL time.Duration
	Logger    *logger.Logger
}

type service struct {
	backend   Backend
	store     kvstore.Store
	lookupTTL time.Duration
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("catalog backend required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("guest store required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		backend:   params.Backend,
		store:     params.Store,
		lookupTTL: params.LookupTTL,
		logg:      logg,
	}, nil
}

// ListProducts forwards the filters and fills missing ratings for the page.
// No match is an empty page, not an error.
func (s *service) ListProducts(ctx context.Context, filter types.ProductFilter) (*types.ProductPage, error) {
	params := pagination.Params{Page: filter.Page, Limit: filter.Limit}.Normalize()
	filter.Page, filter.Limit = params.Page, params.Limit

	page, err := s.backend.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	if page.Products == nil {
		page.Products = []types.Product{}
	}
	// unpaged backends return every match at once
	if page.Pages <= 1 && len(page.Products) > params.Limit {
		page.Total = len(page.Products)
		start, end := pagination.Bounds(page.Total, params)
		page.Products = page.Products[start:end]
		page.Page = params.Page
		page.Pages = pagination.TotalPages(page.Total, params.Limit)
	}
	if page.Page == 0 {
		page.Page = params.Page
	}
	if page.Pages == 0 {
		page.Pages = pagination.TotalPages(page.Total, params.Limit)
	}

	s.fillRatings(ctx, page.Products)
	return &page, nil
}

func (s *service) Featured(ctx context.Context) ([]types.Product, error) {
	products, err := s.backend.FeaturedProducts(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []types.Product{}
	}
	s.fillRatings(ctx, products)
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*types.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.backend.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.ReviewCount == 0 {
		products := []types.Product{product}
		s.fillRatings(ctx, products)
		product = products[0]
	}
	return &product, nil
}

// fillRatings fetches review summaries concurrently for products that came
// back without one. Failures leave the product unrated.
func (s *service) fillRatings(ctx context.Context, products []types.Product) {
	var g errgroup.Group
	g.SetLimit(ratingFetchLimit)
	for i := range products {
		if products[i].ReviewCount > 0 || products[i].AverageRating > 0 || products[i].ID == "" {
			continue
		}
		g.Go(func() error {
			summary, err := s.backend.ProductReviews(ctx, products[i].ID)
			if err != nil {
				s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
					"product_id": products[i].ID,
					"error":      err.Error(),
				}), "rating lookup failed")
				return nil
			}
			products[i].AverageRating = summary.AverageRating
			products[i].ReviewCount = summary.Count
			return nil
		})
	}
	_ = g.Wait()
}

// Lookup returns a reference list, served from the cache when one is configured.
func (s *service) Lookup(ctx context.Context, kind enums.LookupKind, parent string) ([]types.LookupItem, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown lookup %q", kind))
	}
	parent = strings.TrimSpace(parent)
	if kind.ParentParam() != "" && parent == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, kind.ParentParam()+" is required").WithDetails(map[string]string{
			kind.ParentParam(): "is required",
		})
	}

	key := lookupKey(kind, parent)
	if s.lookupTTL > 0 {
		var cached []types.LookupItem
		found, err := kvstore.GetJSON(ctx, s.store, key, &cached)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "lookup cache read failed")
		} else if found {
			return cached, nil
		}
	}

	items, err := s.backend.Lookup(ctx, kind, parent)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []types.LookupItem{}
	}
	if s.lookupTTL > 0 {
		if err := kvstore.SetJSON(ctx, s.store, key, items, s.lookupTTL); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "lookup cache write failed")
		}
	}
	return items, nil
}

func lookupKey(kind enums.LookupKind, parent string) string {
	return "catalog:lookup:" + kind.String() + ":" + strings.ToLower(parent)
}

func (s *service) Reviews(ctx context.Context, productID string) (*types.ReviewSummary, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	summary, err := s.backend.ProductReviews(ctx, productID)
	if err != nil {
		return nil, err
	}
	if summary.Reviews == nil {
		summary.Reviews = []types.Review{}
	}
	return &summary, nil
}

// AddReview posts a review for a signed-in visitor.
func (s *service) AddReview(ctx context.Context, sessionID, productID string, req AddReviewRequest) (*types.Review, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	token, err := kvstore.GetString(ctx, kvstore.Scope(s.store, sessionID), kvstore.KeyToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read token")
	}
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to write a review")
	}
	review, err := s.backend.AddReview(ctx, token, productID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}
	return &review, nil
}
