package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/PhamBaBac/kanban-shopping-client/client"
)

// Products wraps the product catalogue endpoints.
type Products struct {
	client *client.Client
}

func NewProducts(c *client.Client) *Products {
	return &Products{client: c}
}

type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	CategoryID  string   `json:"categoryId"`
}

// ProductFilter flattens to query parameters; zero-valued fields are omitted.
type ProductFilter struct {
	CategoryID string  `json:"categoryId,omitempty"`
	Query      string  `json:"q,omitempty"`
	MinPrice   float64 `json:"minPrice,omitempty"`
	MaxPrice   float64 `json:"maxPrice,omitempty"`
	Page       int     `json:"page,omitempty"`
	PageSize   int     `json:"pageSize,omitempty"`
}

func (p *Products) List(ctx context.Context, filter ProductFilter) ([]Product, error) {
	products, err := client.Unwrap[[]Product](ctx, p.client, http.MethodGet, "/products", filter)
	if err != nil {
		return nil, errors.Wrap(err, "[Products.List]")
	}
	return products, nil
}

func (p *Products) Get(ctx context.Context, id string) (*Product, error) {
	product, err := client.Unwrap[Product](ctx, p.client, http.MethodGet, "/products/"+id, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Products.Get]")
	}
	return &product, nil
}
