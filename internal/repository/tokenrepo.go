// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/session"
)

// TokenRepository keeps one token pair per named profile.
type TokenRepository interface {
	// Get loads the pair of profile; an empty pair when none is stored.
	Get(ctx context.Context, profile string) (model.Tokens, error)
	// Put replaces the pair of profile.
	Put(ctx context.Context, profile string, t model.Tokens) error
	// Delete removes the pair of profile.
	Delete(ctx context.Context, profile string) error
}

// ProfileStore binds a TokenRepository to one profile as a session.Store.
type ProfileStore struct {
	Repo    TokenRepository
	Profile string
}

var _ session.Store = ProfileStore{}

func (s ProfileStore) Load(ctx context.Context) (model.Tokens, error) {
	return s.Repo.Get(ctx, s.Profile)
}

func (s ProfileStore) Save(ctx context.Context, t model.Tokens) error {
	if t.Empty() {
		return s.Repo.Delete(ctx, s.Profile)
	}
	return s.Repo.Put(ctx, s.Profile, t)
}

func (s ProfileStore) Clear(ctx context.Context) error {
	return s.Repo.Delete(ctx, s.Profile)
}
