package api

import "github.com/and161185/pawnshop/internal/session"

// API groups the authenticated resource clients.
type API struct {
	Products *Products
	Clients  *Clients
	Orders   *Orders
	Pawns    *Pawns
}

// New builds every resource client on the same authenticated doer.
func New(d session.Doer) *API {
	return &API{
		Products: NewProducts(d),
		Clients:  NewClients(d),
		Orders:   NewOrders(d),
		Pawns:    NewPawns(d),
	}
}
