// Package service contains application services for signing staff in and out.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/pawnshop/internal/errs"
	"github.com/and161185/pawnshop/internal/limiter"
	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/notify"
	"github.com/and161185/pawnshop/internal/phone"
	"github.com/and161185/pawnshop/internal/session"
)

// Authenticator is the backend side of sign-in.
type Authenticator interface {
	SignIn(ctx context.Context, c model.Credentials) (model.Tokens, error)
	CreateUser(ctx context.Context, u model.NewUser) (string, error)
}

// AuthService defines sign-in, sign-out and account creation.
type AuthService interface {
	// SignIn validates the input, applies the local attempt limit and stores the tokens.
	SignIn(ctx context.Context, phoneNumber, password string) (model.Claims, error)
	// SignOut drops the stored tokens.
	SignOut(ctx context.Context) error
	// Register creates a staff account.
	Register(ctx context.Context, phoneNumber, password, role string) (string, error)
	// Whoami returns the claims of the stored access token.
	Whoami(now time.Time) (model.Claims, error)
}

type AuthServiceImpl struct {
	auth Authenticator
	sess *session.Session
	lim  limiter.Limiter
	log  *zap.Logger
}

var _ AuthService = (*AuthServiceImpl)(nil)

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(auth Authenticator, sess *session.Session, lim limiter.Limiter, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{auth: auth, sess: sess, lim: lim, log: log}
}

func credentials(phoneNumber, password string) (model.Credentials, error) {
	if err := phone.Validate(phoneNumber); err != nil {
		return model.Credentials{}, err
	}
	if password == "" {
		return model.Credentials{}, &errs.ValidationError{Field: "password", Message: notify.Message(notify.PasswordRequired)}
	}
	return model.Credentials{PhoneNumber: phone.Clean(phoneNumber), Password: password}, nil
}

// SignIn authenticates with rate limiting by phone number.
func (s *AuthServiceImpl) SignIn(ctx context.Context, phoneNumber, password string) (model.Claims, error) {
	c, err := credentials(phoneNumber, password)
	if err != nil {
		return model.Claims{}, err
	}
	key := limiter.HashKey(c.PhoneNumber)

	allowed, retry, err := s.lim.Allow(ctx, key)
	if err != nil {
		return model.Claims{}, err
	}
	if !allowed {
		s.log.Info("sign-in locked", zap.Duration("retry_after", retry))
		return model.Claims{}, errs.ErrRateLimited
	}

	tokens, err := s.auth.SignIn(ctx, c)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			if blocked, _, ferr := s.lim.Failure(ctx, key); ferr == nil && blocked {
				return model.Claims{}, errs.ErrRateLimited
			}
		}
		return model.Claims{}, err
	}
	_ = s.lim.Success(ctx, key)

	if err := s.sess.SignIn(ctx, tokens); err != nil {
		return model.Claims{}, err
	}
	claims, _ := session.ParseClaims(tokens.AccessToken)
	s.log.Info("signed in", zap.String("sub", claims.Subject), zap.String("role", claims.Role))
	return claims, nil
}

// SignOut clears the session and its store.
func (s *AuthServiceImpl) SignOut(ctx context.Context) error {
	return s.sess.SignOut(ctx)
}

// Register creates a staff account; it does not sign the new account in.
func (s *AuthServiceImpl) Register(ctx context.Context, phoneNumber, password, role string) (string, error) {
	c, err := credentials(phoneNumber, password)
	if err != nil {
		return "", err
	}
	return s.auth.CreateUser(ctx, model.NewUser{PhoneNumber: c.PhoneNumber, Password: c.Password, Role: role})
}

// Whoami decodes the stored access token. An expired or missing token is errs.ErrUnauthorized.
func (s *AuthServiceImpl) Whoami(now time.Time) (model.Claims, error) {
	tok := s.sess.AccessToken()
	if tok == "" {
		return model.Claims{}, errs.ErrUnauthorized
	}
	c, err := session.ParseClaims(tok)
	if err != nil {
		return model.Claims{}, err
	}
	if session.IsExpired(tok, now) {
		return c, errs.ErrUnauthorized
	}
	return c, nil
}
