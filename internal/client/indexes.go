package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fivetwenty-io/arango/internal/constants"
	internalhttp "github.com/fivetwenty-io/arango/internal/http"
	"github.com/fivetwenty-io/arango/pkg/arango"
)

// IndexesClient implements arango.IndexesClient.
type IndexesClient struct {
	httpClient *internalhttp.Client
	database   string
}

// NewIndexesClient creates a new indexes client.
func NewIndexesClient(httpClient *internalhttp.Client, database string) *IndexesClient {
	return &IndexesClient{
		httpClient: httpClient,
		database:   database,
	}
}

// List implements arango.IndexesClient.List.
func (i *IndexesClient) List(ctx context.Context, collection string) ([]arango.Index, error) {
	if collection == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	query := url.Values{"collection": []string{collection}}

	resp, err := i.httpClient.Get(ctx, databasePath(i.database, constants.IndexPath), query)
	if err != nil {
		return nil, fmt.Errorf("listing indexes: %w", err)
	}

	var payload struct {
		Indexes []arango.Index `json:"indexes"`
	}

	err = arango.DecodePayload(resp.StatusCode, resp.Body, &payload)
	if err != nil {
		return nil, fmt.Errorf("parsing indexes list: %w", err)
	}

	return payload.Indexes, nil
}

// Get implements arango.IndexesClient.Get. The handle has the form
// "collection/number".
func (i *IndexesClient) Get(ctx context.Context, handle string) (*arango.Index, error) {
	if handle == "" {
		return nil, constants.ErrIndexHandleRequired
	}

	resp, err := i.httpClient.Get(ctx, databasePath(i.database, constants.IndexPath+"/"+handle), nil)
	if err != nil {
		return nil, fmt.Errorf("getting index: %w", err)
	}

	return decodeIndex(resp, "parsing index")
}

// Create implements arango.IndexesClient.Create. Creating an index identical
// to an existing one returns the existing index with isNewlyCreated false.
func (i *IndexesClient) Create(ctx context.Context, collection string, request *arango.IndexCreateRequest) (*arango.Index, error) {
	if collection == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	query := url.Values{"collection": []string{collection}}

	resp, err := i.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodPost,
		Path:   databasePath(i.database, constants.IndexPath),
		Query:  query,
		Body:   request,
	})
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	return decodeIndex(resp, "parsing create index response")
}

// Delete implements arango.IndexesClient.Delete.
func (i *IndexesClient) Delete(ctx context.Context, handle string) error {
	if handle == "" {
		return constants.ErrIndexHandleRequired
	}

	_, err := i.httpClient.Delete(ctx, databasePath(i.database, constants.IndexPath+"/"+handle))
	if err != nil {
		return fmt.Errorf("deleting index: %w", err)
	}

	return nil
}

func decodeIndex(resp *internalhttp.Response, wrap string) (*arango.Index, error) {
	var index arango.Index

	err := arango.DecodePayload(resp.StatusCode, resp.Body, &index)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", wrap, err)
	}

	return &index, nil
}
