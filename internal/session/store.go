// Package session keeps the signed-in tokens and performs authenticated backend calls.
package session

import (
	"context"
	"sync"

	"github.com/and161185/pawnshop/internal/model"
)

// Store persists the token pair between runs.
type Store interface {
	// Load returns the saved tokens; an empty pair and nil error when nothing is saved.
	Load(ctx context.Context) (model.Tokens, error)
	// Save replaces the saved tokens.
	Save(ctx context.Context, t model.Tokens) error
	// Clear removes both tokens.
	Clear(ctx context.Context) error
}

// MemoryStore keeps tokens in process memory only.
type MemoryStore struct {
	mu sync.Mutex
	t  model.Tokens
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store seeded with t.
func NewMemoryStore(t model.Tokens) *MemoryStore { return &MemoryStore{t: t} }

func (m *MemoryStore) Load(context.Context) (model.Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t, nil
}

func (m *MemoryStore) Save(_ context.Context, t model.Tokens) error {
	m.mu.Lock()
	m.t = t
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	m.t = model.Tokens{}
	m.mu.Unlock()
	return nil
}
