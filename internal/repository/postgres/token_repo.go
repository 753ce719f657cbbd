package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/repository"
)

// TokenRepo implements repository.TokenRepository on the session_tokens table.
type TokenRepo struct{ db *DB }

var _ repository.TokenRepository = (*TokenRepo)(nil)

// NewTokenRepo constructs a token repository.
func NewTokenRepo(db *DB) *TokenRepo { return &TokenRepo{db: db} }

// Get selects the pair of profile.
func (r *TokenRepo) Get(ctx context.Context, profile string) (model.Tokens, error) {
	const q = `
SELECT access_token, refresh_token
FROM session_tokens WHERE profile=$1`
	var t model.Tokens
	err := r.db.Pool.QueryRow(ctx, q, profile).Scan(&t.AccessToken, &t.RefreshToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Tokens{}, nil
	}
	if err != nil {
		return model.Tokens{}, err
	}
	return t, nil
}

// Put upserts the pair of profile.
func (r *TokenRepo) Put(ctx context.Context, profile string, t model.Tokens) error {
	const q = `
INSERT INTO session_tokens (profile, access_token, refresh_token, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (profile) DO UPDATE
SET access_token = EXCLUDED.access_token, refresh_token = EXCLUDED.refresh_token, updated_at = now()`
	_, err := r.db.Pool.Exec(ctx, q, profile, t.AccessToken, t.RefreshToken)
	return err
}

// Delete removes the pair of profile; deleting a missing profile is not an error.
func (r *TokenRepo) Delete(ctx context.Context, profile string) error {
	const q = `DELETE FROM session_tokens WHERE profile=$1`
	_, err := r.db.Pool.Exec(ctx, q, profile)
	return err
}
