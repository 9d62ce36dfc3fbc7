package auth

import (
	"context"
	"sync"
	"time"
)

// StaticTokenManager holds a pre-issued token. It cannot obtain fresh tokens
// itself, so RefreshToken is a no-op success returning the same token and
// Renewable reports false; the transport never 401-retries on its behalf.
type StaticTokenManager struct {
	mu    sync.RWMutex
	token string
}

// NewStaticTokenManager creates a manager for a pre-issued token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken returns the held token.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.token, nil
}

// RefreshToken is a no-op; the caller must supply a fresh token out-of-band
// via SetToken.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return nil
}

// SetToken replaces the held token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
}

// Renewable reports that a 401 cannot be repaired by this manager.
func (m *StaticTokenManager) Renewable() bool {
	return false
}

// FallbackTokenManager tries a pre-issued token first and falls back to JWT
// issuance once that token stops working. Useful during credential rotation.
type FallbackTokenManager struct {
	mu          sync.RWMutex
	staticToken string
	fellBack    bool
	jwtManager  *JWTTokenManager
}

// NewFallbackTokenManager combines a pre-issued token with password-based
// issuance.
func NewFallbackTokenManager(staticToken string, jwtManager *JWTTokenManager) *FallbackTokenManager {
	return &FallbackTokenManager{
		staticToken: staticToken,
		jwtManager:  jwtManager,
	}
}

// GetToken returns the static token until a refresh has switched the manager
// over to issued tokens.
func (m *FallbackTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	fellBack := m.fellBack
	token := m.staticToken
	m.mu.RUnlock()

	if !fellBack {
		return token, nil
	}

	return m.jwtManager.GetToken(ctx)
}

// RefreshToken abandons the static token and issues a fresh JWT.
func (m *FallbackTokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	m.fellBack = true
	m.mu.Unlock()

	return m.jwtManager.RefreshToken(ctx)
}

// SetToken updates the issued-token cache.
func (m *FallbackTokenManager) SetToken(token string, expiresAt time.Time) {
	m.jwtManager.SetToken(token, expiresAt)

	m.mu.Lock()
	m.fellBack = true
	m.mu.Unlock()
}

// Renewable reports that this manager can fall back to issuance.
func (m *FallbackTokenManager) Renewable() bool {
	return true
}
