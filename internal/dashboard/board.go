// Package dashboard loads the landing screen panels side by side.
package dashboard

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/notify"
	"github.com/and161185/pawnshop/internal/pagination"
)

// LastOrdersCount is how many recent orders the board shows.
const LastOrdersCount = 3

type ClientLister interface {
	List(ctx context.Context, page, limit int) (pagination.Page[model.Client], error)
}

type ProductLister interface {
	List(ctx context.Context, page, limit int) (pagination.Page[model.Product], error)
}

type OrderFeed interface {
	Last(ctx context.Context, n int) ([]model.LastOrder, error)
}

// Panel is one independently loaded block.
type Panel[T any] struct {
	Items []T
	Err   error
}

// View is the board content after a refresh.
type View struct {
	Clients  Panel[model.Client]
	Products Panel[model.Product]
	Orders   Panel[model.LastOrder]
}

// Board refreshes the three panels concurrently.
type Board struct {
	clients  ClientLister
	products ProductLister
	orders   OrderFeed
	notify   notify.Func
	log      *zap.Logger
	pageSize int
}

// New builds a board.
func New(c ClientLister, p ProductLister, o OrderFeed, n notify.Func, log *zap.Logger) *Board {
	if log == nil {
		log = zap.NewNop()
	}
	return &Board{clients: c, products: p, orders: o, notify: n, log: log, pageSize: pagination.DefaultPageSize}
}

// Refresh loads every panel. A failing panel is reported and left empty; the
// others still fill.
func (b *Board) Refresh(ctx context.Context) View {
	var v View
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		page, err := b.clients.List(gctx, pagination.DefaultPage, b.pageSize)
		v.Clients = Panel[model.Client]{Items: page.Items, Err: err}
		return nil
	})
	g.Go(func() error {
		page, err := b.products.List(gctx, pagination.DefaultPage, b.pageSize)
		v.Products = Panel[model.Product]{Items: page.Items, Err: err}
		return nil
	})
	g.Go(func() error {
		last, err := b.orders.Last(gctx, LastOrdersCount)
		v.Orders = Panel[model.LastOrder]{Items: last, Err: err}
		return nil
	})
	_ = g.Wait()

	b.report("clients", v.Clients.Err, notify.ClientLoadError)
	b.report("products", v.Products.Err, notify.ProductLoadError)
	b.report("orders", v.Orders.Err, notify.OrderLoadError)
	if v.Orders.Err == nil {
		b.notify.Successf(notify.DataLoaded, "ការបញ្ជាទិញ", strconv.Itoa(len(v.Orders.Items)))
	}
	return v
}

func (b *Board) report(panel string, err error, fallback notify.Key) {
	if err == nil {
		return
	}
	b.log.Warn("dashboard panel failed", zap.String("panel", panel), zap.Error(err))
	b.notify.Emit(notify.Error, notify.FromError(err, fallback))
}
