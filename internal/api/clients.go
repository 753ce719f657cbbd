package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/and161185/pawnshop/internal/errs"
	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/pagination"
	"github.com/and161185/pawnshop/internal/session"
)

// Clients is the customer API.
type Clients struct{ d session.Doer }

// NewClients constructs the clients API.
func NewClients(d session.Doer) *Clients { return &Clients{d: d} }

// clientList accepts both {"clients": [...], "pagination": {...}} and a bare array.
type clientList struct {
	Clients    []model.Client
	Pagination *pagination.Info
}

func (l *clientList) UnmarshalJSON(b []byte) error {
	var arr []model.Client
	if err := json.Unmarshal(b, &arr); err == nil {
		l.Clients = arr
		return nil
	}
	var obj struct {
		Clients    []model.Client   `json:"clients"`
		Pagination *pagination.Info `json:"pagination"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	l.Clients, l.Pagination = obj.Clients, obj.Pagination
	return nil
}

// List returns one page of customers.
func (c *Clients) List(ctx context.Context, page, limit int) (pagination.Page[model.Client], error) {
	env, err := get[clientList](ctx, c.d, "client", pageQuery(page, limit))
	if err != nil {
		return pagination.Page[model.Client]{}, err
	}
	pg := env.Result.Pagination
	if pg == nil {
		pg = env.Pagination
	}
	return pagination.Page[model.Client]{Items: env.Result.Clients, Pagination: pg}, nil
}

// Create registers a customer. PhoneNumber must already be digits only.
func (c *Clients) Create(ctx context.Context, in model.Client) (model.Client, error) {
	env, err := call[model.Client](ctx, c.d, http.MethodPost, "client", nil, in)
	if err != nil {
		return model.Client{}, err
	}
	if !env.HasResult() {
		return in, nil
	}
	return env.Result, nil
}

// GetByPhone looks a customer up by digits-only phone number.
func (c *Clients) GetByPhone(ctx context.Context, digits string) (model.Client, error) {
	if digits == "" {
		return model.Client{}, fmt.Errorf("%w: empty phone", errs.ErrValidation)
	}
	return required(get[model.Client](ctx, c.d, "client/"+digits, nil))
}
