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

// Products is the product catalogue API.
type Products struct{ d session.Doer }

// NewProducts constructs the products API.
func NewProducts(d session.Doer) *Products { return &Products{d: d} }

type productList struct {
	Products   []model.Product  `json:"products"`
	Pagination *pagination.Info `json:"pagination"`
}

// List returns one catalogue page.
func (p *Products) List(ctx context.Context, page, limit int) (pagination.Page[model.Product], error) {
	env, err := get[productList](ctx, p.d, "product", pageQuery(page, limit))
	if err != nil {
		return pagination.Page[model.Product]{}, err
	}
	pg := env.Result.Pagination
	if pg == nil {
		pg = env.Pagination
	}
	return pagination.Page[model.Product]{Items: env.Result.Products, Pagination: pg}, nil
}

// Create adds a product.
func (p *Products) Create(ctx context.Context, in model.ProductInput) (model.Product, error) {
	return required(call[model.Product](ctx, p.d, http.MethodPost, "product", nil, in))
}

// Update changes a product identified by in.ID.
func (p *Products) Update(ctx context.Context, in model.ProductInput) (model.Product, error) {
	return required(call[model.Product](ctx, p.d, http.MethodPut, "product", nil, in))
}

// Delete removes a product.
func (p *Products) Delete(ctx context.Context, id int) error {
	_, err := call[map[string]any](ctx, p.d, http.MethodDelete, "product/"+strconv.Itoa(id), nil, nil)
	return err
}

// Search finds products by free text.
func (p *Products) Search(ctx context.Context, term string) ([]model.Product, error) {
	q := url.Values{}
	q.Set("search", term)
	env, err := get[[]model.Product](ctx, p.d, "product/search", q)
	return env.Result, err
}
