// Package arangoclient provides the main entry point for creating ArangoDB API clients
package arangoclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/fivetwenty-io/arango/internal/client"
	"github.com/fivetwenty-io/arango/internal/constants"
	"github.com/fivetwenty-io/arango/pkg/arango"
)

// New creates a new ArangoDB API client from the given configuration.
func New(ctx context.Context, config *arango.Config) (arango.Client, error) {
	if config == nil {
		return nil, arango.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, arango.ErrEndpointRequired
	}

	// Normalize endpoint
	endpoint := strings.TrimSuffix(config.Endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}

	config.Endpoint = endpoint

	if config.SkipTLSVerify && config.HTTPClient == nil {
		httpClient, err := createInsecureHTTPClient(config)
		if err != nil {
			return nil, err
		}

		config.HTTPClient = httpClient
	}

	client, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv("ARANGO_DEV_MODE")

	return devMode == "true" || devMode == "1"
}

// createInsecureHTTPClient builds an HTTP client that skips TLS verification.
// Only allowed in explicit development environments.
func createInsecureHTTPClient(config *arango.Config) (*http.Client, error) {
	if !isDevelopmentEnvironment() {
		return nil, fmt.Errorf("%w (set ARANGO_DEV_MODE=true)", arango.ErrSkipTLSOnlyInDev)
	}

	timeout := config.HTTPTimeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- Protected by development environment check above
		},
	}, nil
}

// NewWithEndpoint creates a new client with just a server endpoint (no auth).
func NewWithEndpoint(ctx context.Context, endpoint string) (arango.Client, error) {
	return New(ctx, &arango.Config{
		Endpoint: endpoint,
	})
}

// NewWithToken creates a new client with a server endpoint and a pre-issued JWT.
func NewWithToken(ctx context.Context, endpoint, token string) (arango.Client, error) {
	return New(ctx, &arango.Config{
		Endpoint: endpoint,
		Token:    token,
	})
}

// NewWithPassword creates a new client using username/password authentication.
// Credentials are exchanged for a JWT via /_open/auth on first use.
func NewWithPassword(ctx context.Context, endpoint, username, password string) (arango.Client, error) {
	return New(ctx, &arango.Config{
		Endpoint: endpoint,
		Username: username,
		Password: password,
	})
}

// NewWithDatabase creates a new client scoped to the given database.
func NewWithDatabase(ctx context.Context, endpoint, database string) (arango.Client, error) {
	return New(ctx, &arango.Config{
		Endpoint: endpoint,
		Database: database,
	})
}
