// Package client implements arango.Client: the facade, the per-resource
// clients, and the cursor wiring over the shared transport.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/arango/internal/auth"
	"github.com/fivetwenty-io/arango/internal/constants"
	"github.com/fivetwenty-io/arango/internal/http"
	"github.com/fivetwenty-io/arango/pkg/arango"
)

// Static errors for err113 compliance.
var (
	ErrEndpointRequired = errors.New("endpoint is required")
)

// Client implements the arango.Client interface. All resource clients share
// one transport handle and, through it, one credential cell.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	endpoint     string
	database     string
	logger       arango.Logger

	cursorCloseTimeout time.Duration

	// Resource clients
	databases   arango.DatabasesClient
	collections arango.CollectionsClient
	documents   arango.DocumentsClient
	graphs      arango.GraphsClient
	indexes     arango.IndexesClient
	jobs        arango.JobsClient
	query       arango.QueryClient
}

// createTokenManager creates the appropriate token manager based on config.
// Basic auth is handled at the transport level and needs no manager.
func createTokenManager(config *arango.Config) auth.TokenManager {
	if config.UseBasicAuth {
		return nil
	}

	if config.Token != "" && config.Username != "" && config.Password != "" {
		return auth.NewFallbackTokenManager(config.Token, auth.NewJWTTokenManager(&auth.JWTConfig{
			AuthURL:  config.Endpoint + constants.AuthPath,
			Username: config.Username,
			Password: config.Password,
		}))
	}

	if config.Token != "" {
		return auth.NewStaticTokenManager(config.Token)
	}

	if config.Username != "" {
		return auth.NewJWTTokenManager(&auth.JWTConfig{
			AuthURL:  config.Endpoint + constants.AuthPath,
			Username: config.Username,
			Password: config.Password,
		})
	}

	return nil // No authentication
}

// createHTTPClientOptions builds transport options from config.
func createHTTPClientOptions(config *arango.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	} else if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.UseBasicAuth {
		httpOpts = append(httpOpts, http.WithBasicAuth(config.Username, config.Password))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	return httpOpts
}

// New creates a new client. The endpoint must already be normalized; the
// arangoclient package does that for public consumers.
func New(ctx context.Context, config *arango.Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, ErrEndpointRequired
	}

	database := config.Database
	if database == "" {
		database = constants.DefaultDatabase
	}

	tokenManager := createTokenManager(config)
	httpOpts := createHTTPClientOptions(config)
	httpClient := http.NewClient(config.Endpoint, tokenManager, httpOpts...)

	logger := config.Logger
	if logger == nil {
		logger = arango.NoopLogger()
	}

	closeTimeout := config.CursorCloseTimeout
	if closeTimeout <= 0 {
		closeTimeout = constants.DefaultCursorCloseTimeout
	}

	client := &Client{
		httpClient:         httpClient,
		tokenManager:       tokenManager,
		endpoint:           config.Endpoint,
		database:           database,
		logger:             logger,
		cursorCloseTimeout: closeTimeout,
	}

	client.initializeResourceClients()

	return client, nil
}

// NewWithTokenManager creates a client with a custom token manager, e.g. the
// CLI's config-persisting one.
func NewWithTokenManager(config *arango.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config.Endpoint == "" {
		return nil, ErrEndpointRequired
	}

	database := config.Database
	if database == "" {
		database = constants.DefaultDatabase
	}

	httpOpts := createHTTPClientOptions(config)
	httpClient := http.NewClient(config.Endpoint, tokenManager, httpOpts...)

	logger := config.Logger
	if logger == nil {
		logger = arango.NoopLogger()
	}

	closeTimeout := config.CursorCloseTimeout
	if closeTimeout <= 0 {
		closeTimeout = constants.DefaultCursorCloseTimeout
	}

	client := &Client{
		httpClient:         httpClient,
		tokenManager:       tokenManager,
		endpoint:           config.Endpoint,
		database:           database,
		logger:             logger,
		cursorCloseTimeout: closeTimeout,
	}

	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.databases = NewDatabasesClient(c.httpClient, c.database)
	c.collections = NewCollectionsClient(c.httpClient, c.database)
	c.documents = NewDocumentsClient(c.httpClient, c.database)
	c.graphs = NewGraphsClient(c.httpClient, c.database)
	c.indexes = NewIndexesClient(c.httpClient, c.database)
	c.jobs = NewJobsClient(c.httpClient, c.database)
	c.query = NewQueryClient(c.httpClient, c.database, c.logger, c.cursorCloseTimeout)
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// Database implements arango.Client.Database.
func (c *Client) Database() string {
	return c.database
}

// Databases implements arango.Client.Databases.
func (c *Client) Databases() arango.DatabasesClient { return c.databases }

// Collections implements arango.Client.Collections.
func (c *Client) Collections() arango.CollectionsClient { return c.collections }

// Documents implements arango.Client.Documents.
func (c *Client) Documents() arango.DocumentsClient { return c.documents }

// Graphs implements arango.Client.Graphs.
func (c *Client) Graphs() arango.GraphsClient { return c.graphs }

// Indexes implements arango.Client.Indexes.
func (c *Client) Indexes() arango.IndexesClient { return c.indexes }

// Jobs implements arango.Client.Jobs.
func (c *Client) Jobs() arango.JobsClient { return c.jobs }

// Query implements arango.Client.Query.
func (c *Client) Query() arango.QueryClient { return c.query }

// Version implements arango.Client.Version.
func (c *Client) Version(ctx context.Context) (*arango.VersionInfo, error) {
	resp, err := c.httpClient.Get(ctx, databasePath(c.database, "/_api/version"), nil)
	if err != nil {
		return nil, fmt.Errorf("getting server version: %w", err)
	}

	var version arango.VersionInfo

	err = arango.DecodePayload(resp.StatusCode, resp.Body, &version)
	if err != nil {
		return nil, fmt.Errorf("parsing server version: %w", err)
	}

	return &version, nil
}

// databasePath scopes an API path to a database.
func databasePath(database, path string) string {
	return "/_db/" + database + path
}
