package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/pagination"
	"github.com/and161185/pawnshop/internal/session"
)

// SearchParams are the optional filters of order/search and pawn/search.
type SearchParams struct {
	ClientID    int
	ClientName  string
	PhoneNumber string
}

// Values builds the query, omitting zero fields.
func (p SearchParams) Values() url.Values {
	q := url.Values{}
	if p.ClientID > 0 {
		q.Set("cus_id", strconv.Itoa(p.ClientID))
	}
	if p.ClientName != "" {
		q.Set("cus_name", p.ClientName)
	}
	if p.PhoneNumber != "" {
		q.Set("phone_number", p.PhoneNumber)
	}
	return q
}

// Orders is the sales API.
type Orders struct{ d session.Doer }

// NewOrders constructs the orders API.
func NewOrders(d session.Doer) *Orders { return &Orders{d: d} }

// List returns every order.
func (o *Orders) List(ctx context.Context) ([]model.Order, error) {
	env, err := get[[]model.Order](ctx, o.d, "order", nil)
	return env.Result, err
}

// Create submits a new order.
func (o *Orders) Create(ctx context.Context, in model.OrderCreate) (model.Order, error) {
	env, err := call[model.Order](ctx, o.d, http.MethodPost, "order", nil, in)
	return env.Result, err
}

// AllClients is the paginated, filterable listing of clients with orders.
func (o *Orders) AllClients(ctx context.Context, q url.Values) (pagination.Page[model.Client], error) {
	return clientPage(ctx, o.d, "order/all_client", q)
}

// ClientOrders returns one client with their order history.
func (o *Orders) ClientOrders(ctx context.Context, clientID int) (model.ClientOrders, error) {
	return required(get[model.ClientOrders](ctx, o.d, "order/client/"+strconv.Itoa(clientID), nil))
}

// Search finds orders by client fields.
func (o *Orders) Search(ctx context.Context, p SearchParams) ([]model.Order, error) {
	env, err := get[[]model.Order](ctx, o.d, "order/search", p.Values())
	return env.Result, err
}

// NextID returns the id the next order will receive.
func (o *Orders) NextID(ctx context.Context) (int, error) {
	r, err := required(get[struct {
		ID int `json:"next_order_id"`
	}](ctx, o.d, "order/next-id", nil))
	return r.ID, err
}

// Last returns the n most recent orders, oldest first.
func (o *Orders) Last(ctx context.Context, n int) ([]model.LastOrder, error) {
	env, err := get[[]model.LastOrder](ctx, o.d, "order", nil)
	if err != nil {
		return nil, err
	}
	return lastN(env.Result, n), nil
}

// Print returns the printable payload of an order.
func (o *Orders) Print(ctx context.Context, id int) (model.OrderPrint, error) {
	q := url.Values{}
	q.Set("order_id", strconv.Itoa(id))
	return required(get[model.OrderPrint](ctx, o.d, "order/print", q))
}

func clientPage(ctx context.Context, d session.Doer, path string, q url.Values) (pagination.Page[model.Client], error) {
	env, err := get[[]model.Client](ctx, d, path, q)
	if err != nil {
		return pagination.Page[model.Client]{}, err
	}
	return pagination.Page[model.Client]{Items: env.Result, Pagination: env.Pagination}, nil
}

func lastN[T any](s []T, n int) []T {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
