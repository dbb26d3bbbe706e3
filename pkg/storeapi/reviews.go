package storeapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

func (c *Client) ProductReviews(ctx context.Context, productID string) (types.ReviewSummary, error) {
	route := "/reviews/:productId"
	resp, err := c.send(ctx, call{method: http.MethodGet, path: "/reviews/" + url.PathEscape(productID), route: route})
	if err != nil {
		return types.ReviewSummary{}, err
	}

	var summary struct {
		Reviews       []wireReview `json:"reviews"`
		AverageRating float64      `json:"averageRating"`
		Count         int          `json:"count"`
	}
	if len(resp.body) > 0 && resp.body[0] == '[' {
		if err := unwrap(resp.body, &summary.Reviews); err != nil {
			return types.ReviewSummary{}, decodeError(route, err)
		}
	} else if err := unwrap(resp.body, &summary); err != nil {
		return types.ReviewSummary{}, decodeError(route, err)
	}

	out := types.ReviewSummary{
		Reviews:       make([]types.Review, 0, len(summary.Reviews)),
		AverageRating: summary.AverageRating,
		Count:         summary.Count,
	}
	total := 0
	for _, r := range summary.Reviews {
		review := r.domain()
		if review.ProductID == "" {
			review.ProductID = productID
		}
		total += review.Rating
		out.Reviews = append(out.Reviews, review)
	}
	if out.Count == 0 {
		out.Count = len(out.Reviews)
	}
	if out.AverageRating == 0 && len(out.Reviews) > 0 {
		out.AverageRating = float64(total) / float64(len(out.Reviews))
	}
	return out, nil
}

func (c *Client) AddReview(ctx context.Context, token, productID string, rating int, comment string) (types.Review, error) {
	resp, err := c.send(ctx, call{
		method: http.MethodPost,
		path:   "/reviews/add",
		token:  token,
		body: map[string]any{
			"productId": productID,
			"rating":    rating,
			"comment":   comment,
		},
	})
	if err != nil {
		return types.Review{}, err
	}
	var out wireReview
	if len(resp.body) > 0 {
		if err := unwrap(resp.body, &out, "review", "data"); err != nil {
			return types.Review{}, decodeError("/reviews/add", err)
		}
	}
	review := out.domain()
	if review.ProductID == "" {
		review.ProductID = productID
	}
	if review.Rating == 0 {
		review.Rating = rating
		review.Comment = comment
	}
	return review, nil
}
