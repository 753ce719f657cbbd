package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/repository"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestTokenRepo_Get(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewTokenRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT access_token, refresh_token FROM session_tokens WHERE profile=\$1`).
		WithArgs("counter-1").
		WillReturnRows(pgxmock.NewRows([]string{"access_token", "refresh_token"}).AddRow("A", "R"))
	tok, err := r.Get(ctx, "counter-1")
	require.NoError(t, err)
	require.Equal(t, model.Tokens{AccessToken: "A", RefreshToken: "R"}, tok)

	mock.ExpectQuery(`SELECT access_token, refresh_token FROM session_tokens WHERE profile=\$1`).
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)
	tok, err = r.Get(ctx, "nobody")
	require.NoError(t, err)
	require.True(t, tok.Empty())

	mock.ExpectQuery(`SELECT access_token, refresh_token FROM session_tokens WHERE profile=\$1`).
		WithArgs("broken").
		WillReturnError(errors.New("conn reset"))
	_, err = r.Get(ctx, "broken")
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileStore_SaveAndClear(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	s := repository.ProfileStore{Repo: NewTokenRepo(db), Profile: "counter-1"}
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO session_tokens \(profile, access_token, refresh_token, updated_at\)`).
		WithArgs("counter-1", "A2", "R2").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, s.Save(ctx, model.Tokens{AccessToken: "A2", RefreshToken: "R2"}))

	mock.ExpectExec(`DELETE FROM session_tokens WHERE profile=\$1`).
		WithArgs("counter-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, s.Save(ctx, model.Tokens{}))

	mock.ExpectExec(`DELETE FROM session_tokens WHERE profile=\$1`).
		WithArgs("counter-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.NoError(t, s.Clear(ctx))

	require.NoError(t, mock.ExpectationsWereMet())
}
