// Package limiter throttles repeated failed sign-ins from this client.
package limiter

import (
	"context"
	"crypto/sha256"
	"sync"
	"time"
)

// Limiter controls sign-in attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether a sign-in is currently allowed and optional retry-after.
	Allow(ctx context.Context, key []byte) (bool, time.Duration, error)
	// Success resets counters after a successful sign-in.
	Success(ctx context.Context, key []byte) error
	// Failure records a failed attempt; may place a temporary block.
	Failure(ctx context.Context, key []byte) (bool, time.Duration, error)
}

// HashKey returns a stable hash of a phone number so it is never stored raw.
func HashKey(phone string) []byte {
	h := sha256.Sum256([]byte(phone))
	return h[:]
}

type entry struct {
	fails        int
	updatedAt    time.Time
	blockedUntil time.Time
}

// Memory is a process-local limiter with the same window and lockout rules as PG.
type Memory struct {
	mu       sync.Mutex
	m        map[string]*entry
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time
}

var _ Limiter = (*Memory)(nil)

// NewMemory constructs an in-memory limiter.
func NewMemory(window time.Duration, maxFails int, blockFor time.Duration) *Memory {
	return &Memory{m: map[string]*entry{}, window: window, maxFails: maxFails, blockFor: blockFor, now: time.Now}
}

func (l *Memory) Allow(_ context.Context, key []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.m[string(key)]
	if !ok {
		return true, 0, nil
	}
	now := l.now()
	if e.blockedUntil.After(now) {
		return false, e.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

func (l *Memory) Success(_ context.Context, key []byte) error {
	l.mu.Lock()
	delete(l.m, string(key))
	l.mu.Unlock()
	return nil
}

func (l *Memory) Failure(_ context.Context, key []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	e, ok := l.m[string(key)]
	if !ok || now.Sub(e.updatedAt) > l.window {
		e = &entry{}
		l.m[string(key)] = e
	}
	e.fails++
	e.updatedAt = now
	if e.fails >= l.maxFails {
		e.blockedUntil = now.Add(l.blockFor)
		return true, l.blockFor, nil
	}
	return false, 0, nil
}
