package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/arango/internal/constants"
	internalhttp "github.com/fivetwenty-io/arango/internal/http"
	"github.com/fivetwenty-io/arango/pkg/arango"
)

// DatabasesClient implements arango.DatabasesClient. Create, List, and Drop
// are server-wide and go through the _system database regardless of the
// database this client is scoped to.
type DatabasesClient struct {
	httpClient *internalhttp.Client
	database   string
}

// NewDatabasesClient creates a new databases client.
func NewDatabasesClient(httpClient *internalhttp.Client, database string) *DatabasesClient {
	return &DatabasesClient{
		httpClient: httpClient,
		database:   database,
	}
}

// Current implements arango.DatabasesClient.Current.
func (c *DatabasesClient) Current(ctx context.Context) (*arango.DatabaseInfo, error) {
	resp, err := c.httpClient.Get(ctx, databasePath(c.database, constants.DatabasePath+"/current"), nil)
	if err != nil {
		return nil, fmt.Errorf("getting current database: %w", err)
	}

	var payload struct {
		Result arango.DatabaseInfo `json:"result"`
	}

	err = arango.DecodePayload(resp.StatusCode, resp.Body, &payload)
	if err != nil {
		return nil, fmt.Errorf("parsing current database: %w", err)
	}

	return &payload.Result, nil
}

// User implements arango.DatabasesClient.User: the databases accessible to
// the current user.
func (c *DatabasesClient) User(ctx context.Context) ([]string, error) {
	resp, err := c.httpClient.Get(ctx, databasePath(c.database, constants.DatabasePath+"/user"), nil)
	if err != nil {
		return nil, fmt.Errorf("listing user databases: %w", err)
	}

	return decodeNameList(resp, "parsing user databases")
}

// List implements arango.DatabasesClient.List. The server only permits this
// against _system.
func (c *DatabasesClient) List(ctx context.Context) ([]string, error) {
	resp, err := c.httpClient.Get(ctx, databasePath(constants.DefaultDatabase, constants.DatabasePath), nil)
	if err != nil {
		return nil, fmt.Errorf("listing databases: %w", err)
	}

	return decodeNameList(resp, "parsing databases")
}

// Create implements arango.DatabasesClient.Create.
func (c *DatabasesClient) Create(ctx context.Context, request *arango.DatabaseCreateRequest) error {
	if request == nil || request.Name == "" {
		return constants.ErrDatabaseNameRequired
	}

	resp, err := c.httpClient.Post(ctx, databasePath(constants.DefaultDatabase, constants.DatabasePath), request)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}

	return decodeResultFlag(resp, "parsing create database response")
}

// Drop implements arango.DatabasesClient.Drop.
func (c *DatabasesClient) Drop(ctx context.Context, name string) error {
	if name == "" {
		return constants.ErrDatabaseNameRequired
	}

	resp, err := c.httpClient.Delete(ctx, databasePath(constants.DefaultDatabase, constants.DatabasePath+"/"+name))
	if err != nil {
		return fmt.Errorf("dropping database: %w", err)
	}

	return decodeResultFlag(resp, "parsing drop database response")
}

// decodeNameList decodes the `{result: [names]}` payload shared by the
// database listings.
func decodeNameList(resp *internalhttp.Response, wrap string) ([]string, error) {
	var payload struct {
		Result []string `json:"result"`
	}

	err := arango.DecodePayload(resp.StatusCode, resp.Body, &payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", wrap, err)
	}

	return payload.Result, nil
}

// decodeResultFlag decodes the `{result: true}` acknowledgement payload.
func decodeResultFlag(resp *internalhttp.Response, wrap string) error {
	var payload struct {
		Result bool `json:"result"`
	}

	err := arango.DecodePayload(resp.StatusCode, resp.Body, &payload)
	if err != nil {
		return fmt.Errorf("%s: %w", wrap, err)
	}

	return nil
}
