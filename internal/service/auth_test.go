package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/pawnshop/internal/errs"
	"github.com/and161185/pawnshop/internal/limiter"
	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/session"
)

type fakeAuth struct {
	password string
	access   string
	err      error

	calls   int
	lastCrd model.Credentials
	created []model.NewUser
}

var _ Authenticator = (*fakeAuth)(nil)

func (f *fakeAuth) SignIn(_ context.Context, c model.Credentials) (model.Tokens, error) {
	f.calls++
	f.lastCrd = c
	if f.err != nil {
		return model.Tokens{}, f.err
	}
	if c.Password != f.password {
		return model.Tokens{}, &errs.APIError{Code: 401, Status: "error", Message: "bad credentials"}
	}
	return model.Tokens{AccessToken: f.access, RefreshToken: "R"}, nil
}

func (f *fakeAuth) CreateUser(_ context.Context, u model.NewUser) (string, error) {
	f.created = append(f.created, u)
	return "created", nil
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, time.Minute, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, []byte) error {
	l.successCalls++
	return nil
}
func (l *fakeLimiter) Failure(context.Context, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

func accessToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "7",
		"role": "staff",
		"type": "access_token",
		"exp":  exp.Unix(),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(context.Background(), session.NewMemoryStore(model.Tokens{}))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return s
}

func TestAuth_SignIn_ValidatesLocally(t *testing.T) {
	t.Parallel()
	auth := &fakeAuth{password: "pw"}
	lim := &fakeLimiter{allowOK: true}
	s := NewAuthService(auth, newSession(t), lim, nil)

	if _, err := s.SignIn(context.Background(), "12", "pw"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error on short phone, got %v", err)
	}
	if _, err := s.SignIn(context.Background(), "012345678", ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error on empty password, got %v", err)
	}
	if auth.calls != 0 || lim.allowCalls != 0 {
		t.Fatalf("validation must not reach limiter or backend: auth=%d lim=%d", auth.calls, lim.allowCalls)
	}
}

func TestAuth_SignIn_RateLimiterAndCreds(t *testing.T) {
	t.Parallel()
	exp := time.Now().Add(time.Hour)
	auth := &fakeAuth{password: "correct", access: accessToken(t, exp)}
	lim := &fakeLimiter{allowOK: true}
	sess := newSession(t)
	s := NewAuthService(auth, sess, lim, nil)
	ctx := context.Background()

	lim.allowErr = errors.New("lim-err")
	if _, err := s.SignIn(ctx, "012 345 678", "correct"); err == nil {
		t.Fatalf("want limiter error propagate")
	}
	lim.allowErr = nil

	lim.allowOK = false
	if _, err := s.SignIn(ctx, "012 345 678", "correct"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
	lim.allowOK = true

	lim.failBlocked = true
	if _, err := s.SignIn(ctx, "012 345 678", "wrong"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited on blocked after failure, got %v", err)
	}
	lim.failBlocked = false
	if _, err := s.SignIn(ctx, "012 345 678", "wrong"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized on wrong password, got %v", err)
	}

	auth.err = &errs.HTTPError{Status: 502}
	failures := lim.failureCalls
	if _, err := s.SignIn(ctx, "012 345 678", "correct"); err == nil {
		t.Fatalf("want backend error")
	}
	if lim.failureCalls != failures {
		t.Fatalf("server errors must not count as failed attempts")
	}
	auth.err = nil

	claims, err := s.SignIn(ctx, "012 345 678", "correct")
	if err != nil {
		t.Fatalf("SignIn success: %v", err)
	}
	if auth.lastCrd.PhoneNumber != "012345678" {
		t.Fatalf("phone must be sent as digits, got %q", auth.lastCrd.PhoneNumber)
	}
	if claims.Subject != "7" || claims.Role != "staff" {
		t.Fatalf("bad claims: %+v", claims)
	}
	if sess.RefreshToken() != "R" || lim.successCalls == 0 {
		t.Fatalf("tokens not stored or limiter not reset")
	}

	who, err := s.Whoami(time.Now())
	if err != nil || who.Subject != "7" {
		t.Fatalf("Whoami: %+v %v", who, err)
	}
	if _, err := s.Whoami(exp.Add(time.Second)); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized after exp, got %v", err)
	}

	if err := s.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := s.Whoami(time.Now()); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized after sign-out, got %v", err)
	}
}

func TestAuth_Register(t *testing.T) {
	t.Parallel()
	auth := &fakeAuth{}
	s := NewAuthService(auth, newSession(t), &fakeLimiter{allowOK: true}, nil)

	if _, err := s.Register(context.Background(), "", "pw", "staff"); err == nil {
		t.Fatalf("want validation error on empty phone")
	}
	msg, err := s.Register(context.Background(), "098-765-432", "pw", "admin")
	if err != nil || msg != "created" {
		t.Fatalf("Register: %q %v", msg, err)
	}
	if auth.created[0] != (model.NewUser{PhoneNumber: "098765432", Password: "pw", Role: "admin"}) {
		t.Fatalf("unexpected payload: %+v", auth.created[0])
	}
}
