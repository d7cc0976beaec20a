package api

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/PhamBaBac/kanban-shopping-client/client"
)

// Orders wraps the order-history endpoints.
type Orders struct {
	client *client.Client
}

func NewOrders(c *client.Client) *Orders {
	return &Orders{client: c}
}

type Order struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"createdAt"`
	Items     []OrderItem `json:"items"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

func (o *Orders) List(ctx context.Context) ([]Order, error) {
	orders, err := client.Unwrap[[]Order](ctx, o.client, http.MethodGet, "/orders", nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Orders.List]")
	}
	return orders, nil
}

func (o *Orders) Get(ctx context.Context, id string) (*Order, error) {
	order, err := client.Unwrap[Order](ctx, o.client, http.MethodGet, "/orders/"+id, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Orders.Get]")
	}
	return &order, nil
}
