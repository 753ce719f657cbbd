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

// Pawns is the pledge API.
type Pawns struct{ d session.Doer }

// NewPawns constructs the pawns API.
func NewPawns(d session.Doer) *Pawns { return &Pawns{d: d} }

// Get returns a single pawn.
func (p *Pawns) Get(ctx context.Context, id int) (model.Pawn, error) {
	return required(get[model.Pawn](ctx, p.d, "pawn/"+strconv.Itoa(id), nil))
}

// Create submits a new pawn.
func (p *Pawns) Create(ctx context.Context, in model.PawnCreate) (model.Pawn, error) {
	env, err := call[model.Pawn](ctx, p.d, http.MethodPost, "pawn", nil, in)
	return env.Result, err
}

// AllClients is the paginated, filterable listing of clients with pawns.
func (p *Pawns) AllClients(ctx context.Context, q url.Values) (pagination.Page[model.Client], error) {
	return clientPage(ctx, p.d, "pawn/all_client", q)
}

// ClientPawns returns one client with their pawn history.
func (p *Pawns) ClientPawns(ctx context.Context, clientID int) (model.ClientPawns, error) {
	return required(get[model.ClientPawns](ctx, p.d, "pawn/client/"+strconv.Itoa(clientID), nil))
}

// Search finds pawns by client fields.
func (p *Pawns) Search(ctx context.Context, sp SearchParams) ([]model.Pawn, error) {
	env, err := get[[]model.Pawn](ctx, p.d, "pawn/search", sp.Values())
	return env.Result, err
}

// NextID returns the id the next pawn will receive.
func (p *Pawns) NextID(ctx context.Context) (int, error) {
	r, err := required(get[struct {
		ID int `json:"next_id"`
	}](ctx, p.d, "pawn/next-id", nil))
	return r.ID, err
}

// Last returns the most recent pawns.
func (p *Pawns) Last(ctx context.Context) ([]model.Pawn, error) {
	env, err := get[[]model.Pawn](ctx, p.d, "pawn/last", nil)
	return env.Result, err
}

// Print returns the printable payload of a pawn.
func (p *Pawns) Print(ctx context.Context, id int) (model.PawnPrint, error) {
	q := url.Values{}
	q.Set("pawn_id", strconv.Itoa(id))
	return required(get[model.PawnPrint](ctx, p.d, "pawn/print", q))
}
