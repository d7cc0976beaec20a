package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/PhamBaBac/kanban-shopping-client/client"
	"github.com/PhamBaBac/kanban-shopping-client/internal/utils"
)

// Reviews wraps the product-review endpoints.
type Reviews struct {
	client *client.Client
}

func NewReviews(c *client.Client) *Reviews {
	return &Reviews{client: c}
}

type Review struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	UserID    string  `json:"userId"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment,omitempty"`
}

func (r *Reviews) ListForProduct(ctx context.Context, productID string) ([]Review, error) {
	reviews, err := client.Unwrap[[]Review](ctx, r.client, http.MethodGet, "/products/"+productID+"/reviews", nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Reviews.ListForProduct]")
	}
	return reviews, nil
}

// Create posts a review. comment may be empty; it is sent as an explicit
// field either way, matching the backend's body contract.
func (r *Reviews) Create(ctx context.Context, productID string, rating int, comment string) (*Review, error) {
	body := map[string]any{
		"productId": productID,
		"rating":    rating,
		"comment":   utils.Ptr(comment),
	}
	review, err := client.Unwrap[Review](ctx, r.client, http.MethodPost, "/reviews", body)
	if err != nil {
		return nil, errors.Wrap(err, "[Reviews.Create]")
	}
	return &review, nil
}

// CommentText returns the review comment or "" when absent.
func (rv Review) CommentText() string {
	return utils.Value(rv.Comment)
}
