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

// GraphsClient implements arango.GraphsClient.
type GraphsClient struct {
	httpClient *internalhttp.Client
	database   string
}

// NewGraphsClient creates a new graphs client.
func NewGraphsClient(httpClient *internalhttp.Client, database string) *GraphsClient {
	return &GraphsClient{
		httpClient: httpClient,
		database:   database,
	}
}

func (g *GraphsClient) path(parts ...string) string {
	path := constants.GraphPath
	for _, part := range parts {
		path += "/" + part
	}

	return databasePath(g.database, path)
}

// List implements arango.GraphsClient.List.
func (g *GraphsClient) List(ctx context.Context) ([]arango.Graph, error) {
	resp, err := g.httpClient.Get(ctx, g.path(), nil)
	if err != nil {
		return nil, fmt.Errorf("listing graphs: %w", err)
	}

	var payload struct {
		Graphs []arango.Graph `json:"graphs"`
	}

	err = arango.DecodePayload(resp.StatusCode, resp.Body, &payload)
	if err != nil {
		return nil, fmt.Errorf("parsing graphs list: %w", err)
	}

	return payload.Graphs, nil
}

// Get implements arango.GraphsClient.Get.
func (g *GraphsClient) Get(ctx context.Context, name string) (*arango.Graph, error) {
	if name == "" {
		return nil, constants.ErrGraphNameRequired
	}

	resp, err := g.httpClient.Get(ctx, g.path(name), nil)
	if err != nil {
		return nil, fmt.Errorf("getting graph: %w", err)
	}

	return decodeGraph(resp, "parsing graph")
}

// Create implements arango.GraphsClient.Create.
func (g *GraphsClient) Create(ctx context.Context, request *arango.GraphCreateRequest) (*arango.Graph, error) {
	if request == nil || request.Name == "" {
		return nil, constants.ErrGraphNameRequired
	}

	resp, err := g.httpClient.Post(ctx, g.path(), request)
	if err != nil {
		return nil, fmt.Errorf("creating graph: %w", err)
	}

	return decodeGraph(resp, "parsing create graph response")
}

// Drop implements arango.GraphsClient.Drop. With dropCollections the graph's
// collections go with it unless another graph still uses them.
func (g *GraphsClient) Drop(ctx context.Context, name string, dropCollections bool) error {
	if name == "" {
		return constants.ErrGraphNameRequired
	}

	var query url.Values
	if dropCollections {
		query = url.Values{"dropCollections": []string{"true"}}
	}

	_, err := g.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodDelete,
		Path:   g.path(name),
		Query:  query,
	})
	if err != nil {
		return fmt.Errorf("dropping graph: %w", err)
	}

	return nil
}

func decodeGraph(resp *internalhttp.Response, wrap string) (*arango.Graph, error) {
	var payload struct {
		Graph arango.Graph `json:"graph"`
	}

	err := arango.DecodePayload(resp.StatusCode, resp.Body, &payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", wrap, err)
	}

	return &payload.Graph, nil
}
