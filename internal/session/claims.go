package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/pawnshop/internal/model"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        string `json:"role,omitempty"`
	Type        string `json:"type,omitempty"`
}

// ParseClaims decodes a JWT payload without verifying its signature;
// the backend is the only party that verifies.
func ParseClaims(token string) (model.Claims, error) {
	var c tokenClaims
	p := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := p.ParseUnverified(token, &c); err != nil {
		return model.Claims{}, err
	}
	out := model.Claims{
		Subject:     c.Subject,
		PhoneNumber: c.PhoneNumber,
		Role:        c.Role,
		Type:        c.Type,
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Unix()
	}
	return out, nil
}

// IsExpired reports whether token is unreadable or past its exp at now.
// A token without exp never expires.
func IsExpired(token string, now time.Time) bool {
	c, err := ParseClaims(token)
	if err != nil {
		return true
	}
	if c.ExpiresAt == 0 {
		return false
	}
	return !now.Before(time.Unix(c.ExpiresAt, 0))
}

// UserFromToken returns the claims of an access token; refresh tokens are rejected.
func UserFromToken(token string) (model.Claims, bool) {
	c, err := ParseClaims(token)
	if err != nil || c.Type != "access_token" {
		return model.Claims{}, false
	}
	return c, true
}
