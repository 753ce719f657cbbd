package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/session"
)

// Auth talks to the sign-in endpoints. It must be built on an anonymous
// session.Endpoint so refresh calls never re-enter the refresh path.
type Auth struct{ d session.Doer }

var _ session.Refresher = (*Auth)(nil)

// NewAuth constructs the auth API.
func NewAuth(d session.Doer) *Auth { return &Auth{d: d} }

// SignIn exchanges phone number and password for a token pair.
func (a *Auth) SignIn(ctx context.Context, c model.Credentials) (model.Tokens, error) {
	q := url.Values{}
	q.Set("phone_number", c.PhoneNumber)
	q.Set("password", c.Password)
	return required(get[model.Tokens](ctx, a.d, "sign_in", q))
}

// Refresh implements session.Refresher.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (model.Tokens, error) {
	body := map[string]string{"refresh_token": refreshToken}
	return required(call[model.Tokens](ctx, a.d, http.MethodPost, "refresh_token", nil, body))
}

// CreateUser registers a staff account and returns the backend message.
func (a *Auth) CreateUser(ctx context.Context, u model.NewUser) (string, error) {
	env, err := call[map[string]any](ctx, a.d, http.MethodPost, "create_user", nil, u)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
