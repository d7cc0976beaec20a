package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/PhamBaBac/kanban-shopping-client/client"
	"github.com/PhamBaBac/kanban-shopping-client/session"
)

// Carts wraps the cart endpoints. Every call carries the X-Session-Id header
// so the backend can correlate an anonymous cart with the session that will
// later authenticate.
type Carts struct {
	client *client.Client
	store  session.Store
}

func NewCarts(c *client.Client, store session.Store) *Carts {
	return &Carts{client: c, store: store}
}

type Cart struct {
	ID    string     `json:"id"`
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

type CartItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

func (c *Carts) Get(ctx context.Context) (*Cart, error) {
	opts, err := c.sessionHeader()
	if err != nil {
		return nil, errors.Wrap(err, "[Carts.Get]")
	}
	cart, err := client.Unwrap[Cart](ctx, c.client, http.MethodGet, "/carts", nil, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "[Carts.Get]")
	}
	return &cart, nil
}

func (c *Carts) AddItem(ctx context.Context, productID string, quantity int) (*Cart, error) {
	opts, err := c.sessionHeader()
	if err != nil {
		return nil, errors.Wrap(err, "[Carts.AddItem]")
	}
	body := map[string]any{"productId": productID, "quantity": quantity}
	cart, err := client.Unwrap[Cart](ctx, c.client, http.MethodPost, "/carts/items", body, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "[Carts.AddItem]")
	}
	return &cart, nil
}

func (c *Carts) RemoveItem(ctx context.Context, productID string) (*Cart, error) {
	opts, err := c.sessionHeader()
	if err != nil {
		return nil, errors.Wrap(err, "[Carts.RemoveItem]")
	}
	cart, err := client.Unwrap[Cart](ctx, c.client, http.MethodDelete, "/carts/items/"+productID, nil, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "[Carts.RemoveItem]")
	}
	return &cart, nil
}

func (c *Carts) sessionHeader() ([]client.RequestOption, error) {
	id, err := c.store.SessionID()
	if err != nil {
		return nil, errors.Wrap(err, "store.SessionID")
	}
	return []client.RequestOption{client.WithHeader("X-Session-Id", id)}, nil
}
