package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/and161185/pawnshop/internal/model"
)

// refreshTimeout bounds one token exchange; it does not follow the caller's context.
const refreshTimeout = 30 * time.Second

// Refresher exchanges a refresh token for a new access token (and optionally a rotated
// refresh token). It must not go through Client, or a 401 would recurse.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (model.Tokens, error)
}

// Session is the explicitly passed session context: the token pair, a
// refresh-in-progress flag and the hook fired when the session ends.
type Session struct {
	mu     sync.RWMutex
	tokens model.Tokens
	store  Store
	log    *zap.Logger

	refreshing atomic.Bool
	group      singleflight.Group

	onTerminate func()
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.log = l } }

// OnTerminate sets the hook run after the tokens were dropped (the "back to sign-in" signal).
func OnTerminate(f func()) Option { return func(s *Session) { s.onTerminate = f } }

// New loads the saved tokens from store.
func New(ctx context.Context, store Store, opts ...Option) (*Session, error) {
	s := &Session{store: store, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	t, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.tokens = t
	return s, nil
}

// Tokens returns a copy of the current pair.
func (s *Session) Tokens() model.Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// AccessToken returns the current access token or "".
func (s *Session) AccessToken() string { return s.Tokens().AccessToken }

// RefreshToken returns the current refresh token or "".
func (s *Session) RefreshToken() string { return s.Tokens().RefreshToken }

// Refreshing reports whether a refresh call is in flight.
func (s *Session) Refreshing() bool { return s.refreshing.Load() }

// SignIn stores a freshly issued pair.
func (s *Session) SignIn(ctx context.Context, t model.Tokens) error {
	if t.AccessToken == "" {
		return errors.New("validation: empty access token")
	}
	s.mu.Lock()
	s.tokens = t
	s.mu.Unlock()
	return s.store.Save(ctx, t)
}

// SignOut drops both tokens without firing the termination hook.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.tokens = model.Tokens{}
	s.mu.Unlock()
	return s.store.Clear(ctx)
}

// Terminate drops both tokens and fires the termination hook. A session that is
// already empty is left alone, so concurrent failures report the expiry once.
func (s *Session) Terminate(ctx context.Context) {
	s.mu.Lock()
	held := !s.tokens.Empty()
	s.tokens = model.Tokens{}
	s.mu.Unlock()
	if !held {
		return
	}
	if err := s.store.Clear(context.WithoutCancel(ctx)); err != nil {
		s.log.Warn("clear tokens", zap.Error(err))
	}
	if s.onTerminate != nil {
		s.onTerminate()
	}
}

// Refresh exchanges the current refresh token once. stale is the access token the
// caller was rejected with: when the session already holds a different one, that
// token is returned without another exchange. Concurrent callers holding the same
// refresh token share a single call.
//
// The exchange runs detached from ctx and bounded by refreshTimeout. A caller whose
// ctx ends first gets ctx.Err() while the shared call completes for the others.
func (s *Session) Refresh(ctx context.Context, r Refresher, stale string) (string, error) {
	rt := s.RefreshToken()
	if rt == "" {
		return "", errors.New("no refresh token")
	}
	ch := s.group.DoChan(rt, func() (any, error) {
		if cur := s.AccessToken(); cur != "" && cur != stale {
			return cur, nil
		}
		s.refreshing.Store(true)
		defer s.refreshing.Store(false)

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		t, err := r.Refresh(rctx, rt)
		if err != nil {
			return "", err
		}
		if t.AccessToken == "" {
			return "", errors.New("refresh: empty access token")
		}
		s.mu.Lock()
		if s.tokens.RefreshToken != rt {
			// signed out or signed in again while the exchange ran
			cur := s.tokens.AccessToken
			s.mu.Unlock()
			if cur == "" {
				return "", errors.New("refresh: signed out")
			}
			return cur, nil
		}
		s.tokens.AccessToken = t.AccessToken
		if t.RefreshToken != "" {
			s.tokens.RefreshToken = t.RefreshToken
		}
		snap := s.tokens
		s.mu.Unlock()
		if err := s.store.Save(rctx, snap); err != nil {
			// the new token is usable even if it could not be persisted
			s.log.Warn("persist refreshed token", zap.Error(err))
		}
		return t.AccessToken, nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}
