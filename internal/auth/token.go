package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/arango/internal/constants"
)

// TokenManager is the credential source consulted by the transport. The
// transport attaches the token returned by GetToken to every request; on a
// 401 it calls RefreshToken exactly once, but only when Renewable reports
// that a fresh token can actually be obtained.
type TokenManager interface {
	// GetToken returns a currently valid token, obtaining one if needed.
	GetToken(ctx context.Context) (string, error)
	// RefreshToken forces issuance of a fresh token.
	RefreshToken(ctx context.Context) error
	// SetToken replaces the cached token.
	SetToken(token string, expiresAt time.Time)
	// Renewable reports whether RefreshToken can obtain a fresh token.
	Renewable() bool
}

// Token represents a bearer token with optional expiry.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether the token exists and is not within the expiry buffer.
// A token without expiry never goes stale client-side.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpiryBuffer).Before(t.ExpiresAt)
}

// TokenStore is the shared credential cell. The swap on renewal is atomic
// with respect to concurrent readers: a reader sees either the old or the
// new token in full.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// Get returns the current token, which may be nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token wholesale.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}
