package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PG is a PostgreSQL-backed limiter shared by every terminal on the same database.
type PG struct {
	pool     pgxQuerier
	window   time.Duration
	maxFails int
	blockFor time.Duration
}

var _ Limiter = (*PG)(nil)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter.
func NewPG(q pgxQuerier, window time.Duration, maxFails int, blockFor time.Duration) *PG {
	return &PG{pool: q, window: window, maxFails: maxFails, blockFor: blockFor}
}

// Allow reports whether sign-in is currently allowed and a retry-after duration.
func (l *PG) Allow(ctx context.Context, key []byte) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM sign_in_attempts WHERE key_hash=$1`
	var blockedUntil time.Time
	err := l.pool.QueryRow(ctx, q, key).Scan(&blockedUntil)
	switch {
	case err == nil:
		if blockedUntil.After(time.Now()) {
			return false, time.Until(blockedUntil), nil
		}
		return true, 0, nil
	case errors.Is(err, pgx.ErrNoRows):
		return true, 0, nil
	default:
		return false, 0, err
	}
}

// Success resets counters for key.
func (l *PG) Success(ctx context.Context, key []byte) error {
	const q = `DELETE FROM sign_in_attempts WHERE key_hash=$1`
	_, err := l.pool.Exec(ctx, q, key)
	return err
}

// Failure records a failed attempt; may set a block until a future time.
func (l *PG) Failure(ctx context.Context, key []byte) (bool, time.Duration, error) {
	now := time.Now()

	const q = `
INSERT INTO sign_in_attempts (key_hash, fail_count, blocked_until, updated_at)
VALUES ($1,1,'epoch',now())
ON CONFLICT (key_hash) DO UPDATE
SET
  fail_count = CASE WHEN EXCLUDED.updated_at - sign_in_attempts.updated_at > $2::interval THEN 1 ELSE sign_in_attempts.fail_count + 1 END,
  updated_at = now()
RETURNING fail_count`
	var fails int
	if err := l.pool.QueryRow(ctx, q, key, l.window).Scan(&fails); err != nil {
		return false, 0, err
	}
	if fails >= l.maxFails {
		blockUntil := now.Add(l.blockFor)
		const upd = `UPDATE sign_in_attempts SET blocked_until=$2 WHERE key_hash=$1`
		if _, err := l.pool.Exec(ctx, upd, key, blockUntil); err != nil {
			return false, 0, err
		}
		return true, l.blockFor, nil
	}
	return false, 0, nil
}
