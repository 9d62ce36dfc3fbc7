package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister persists a renewed token for an endpoint, so the CLI stays
// logged in across invocations.
type ConfigPersister interface {
	UpdateEndpointToken(endpoint, token string, expiresAt time.Time) error
}

// ConfigTokenManager wraps JWTTokenManager and automatically persists renewed
// tokens to the CLI config.
type ConfigTokenManager struct {
	jwtManager *JWTTokenManager
	persister  ConfigPersister
	endpoint   string

	mu            sync.Mutex
	initialToken  string
	initialExpiry time.Time
}

// NewConfigTokenManager creates a config-persisting token manager. When an
// initial token is supplied (from a previous login), it seeds the cache.
func NewConfigTokenManager(config *JWTConfig, persister ConfigPersister, endpoint, initialToken string, initialExpiry time.Time) *ConfigTokenManager {
	jwtManager := NewJWTTokenManager(config)

	if initialToken != "" {
		jwtManager.SetToken(initialToken, initialExpiry)
	}

	return &ConfigTokenManager{
		jwtManager:    jwtManager,
		persister:     persister,
		endpoint:      endpoint,
		initialToken:  initialToken,
		initialExpiry: initialExpiry,
	}
}

// GetToken returns a valid token, persisting it when a renewal happened.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.jwtManager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfRenewed()

	return token, nil
}

// RefreshToken forces a renewal and persists the result.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	err := m.jwtManager.RefreshToken(ctx)
	if err != nil {
		return err
	}

	m.persistIfRenewed()

	return nil
}

// SetToken replaces the cached token without persisting it.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.jwtManager.SetToken(token, expiresAt)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.initialToken = token
	m.initialExpiry = expiresAt
}

// Renewable reports that this manager can obtain fresh tokens.
func (m *ConfigTokenManager) Renewable() bool {
	return true
}

func (m *ConfigTokenManager) persistIfRenewed() {
	current := m.jwtManager.store.Get()
	if current == nil {
		return
	}

	m.mu.Lock()

	renewed := current.AccessToken != m.initialToken || !current.ExpiresAt.Equal(m.initialExpiry)
	if renewed {
		m.initialToken = current.AccessToken
		m.initialExpiry = current.ExpiresAt
	}

	m.mu.Unlock()

	if !renewed {
		return
	}

	err := m.persist(current)
	if err != nil {
		// Persisting is best-effort; the in-memory token keeps working.
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist renewed token: %v\n", err)
	}
}

func (m *ConfigTokenManager) persist(token *Token) error {
	if m.persister == nil {
		return ErrNoConfigPersister
	}

	err := m.persister.UpdateEndpointToken(m.endpoint, token.AccessToken, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("updating endpoint token: %w", err)
	}

	return nil
}
