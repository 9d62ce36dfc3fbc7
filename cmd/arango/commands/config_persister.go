package commands

import (
	"fmt"
	"sync"
	"time"
)

// ConfigPersister implements the auth.ConfigPersister interface so renewed
// JWTs land back in the CLI configuration file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateEndpointToken updates the token and related metadata for a server in
// the config.
func (p *ConfigPersister) UpdateEndpointToken(serverKey, token string, expiresAt time.Time) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	serverConfig, exists := config.Servers[serverKey]
	if !exists {
		return fmt.Errorf("server configuration for '%s': %w", serverKey, ErrServerNotFound)
	}

	serverConfig.Token = token
	if !expiresAt.IsZero() {
		serverConfig.TokenExpiresAt = &expiresAt
	}

	now := time.Now()
	serverConfig.LastRefreshed = &now

	return saveConfigStruct(config)
}
