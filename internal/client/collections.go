package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/arango/internal/constants"
	internalhttp "github.com/fivetwenty-io/arango/internal/http"
	"github.com/fivetwenty-io/arango/pkg/arango"
)

// CollectionsClient implements arango.CollectionsClient.
type CollectionsClient struct {
	httpClient *internalhttp.Client
	database   string
}

// NewCollectionsClient creates a new collections client.
func NewCollectionsClient(httpClient *internalhttp.Client, database string) *CollectionsClient {
	return &CollectionsClient{
		httpClient: httpClient,
		database:   database,
	}
}

func (c *CollectionsClient) path(parts ...string) string {
	path := constants.CollectionPath
	for _, part := range parts {
		path += "/" + part
	}

	return databasePath(c.database, path)
}

// List implements arango.CollectionsClient.List.
func (c *CollectionsClient) List(ctx context.Context, excludeSystem bool) ([]arango.Collection, error) {
	var query url.Values
	if excludeSystem {
		query = url.Values{"excludeSystem": []string{"true"}}
	}

	resp, err := c.httpClient.Get(ctx, c.path(), query)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	var payload struct {
		Result []arango.Collection `json:"result"`
	}

	err = arango.DecodePayload(resp.StatusCode, resp.Body, &payload)
	if err != nil {
		return nil, fmt.Errorf("parsing collections list: %w", err)
	}

	return payload.Result, nil
}

// Get implements arango.CollectionsClient.Get.
func (c *CollectionsClient) Get(ctx context.Context, name string) (*arango.Collection, error) {
	if name == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	resp, err := c.httpClient.Get(ctx, c.path(name), nil)
	if err != nil {
		return nil, fmt.Errorf("getting collection: %w", err)
	}

	return decodeCollection(resp, "parsing collection")
}

// Create implements arango.CollectionsClient.Create.
func (c *CollectionsClient) Create(ctx context.Context, request *arango.CollectionCreateRequest) (*arango.CollectionProperties, error) {
	if request == nil || request.Name == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	resp, err := c.httpClient.Post(ctx, c.path(), request)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	return decodeCollectionProperties(resp, "parsing create collection response")
}

// Drop implements arango.CollectionsClient.Drop.
func (c *CollectionsClient) Drop(ctx context.Context, name string) error {
	if name == "" {
		return constants.ErrCollectionNameRequired
	}

	_, err := c.httpClient.Delete(ctx, c.path(name))
	if err != nil {
		return fmt.Errorf("dropping collection: %w", err)
	}

	return nil
}

// Truncate implements arango.CollectionsClient.Truncate.
func (c *CollectionsClient) Truncate(ctx context.Context, name string) (*arango.Collection, error) {
	if name == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	resp, err := c.httpClient.Put(ctx, c.path(name, "truncate"), nil)
	if err != nil {
		return nil, fmt.Errorf("truncating collection: %w", err)
	}

	return decodeCollection(resp, "parsing truncate response")
}

// Rename implements arango.CollectionsClient.Rename.
func (c *CollectionsClient) Rename(ctx context.Context, name, newName string) (*arango.Collection, error) {
	if name == "" || newName == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	resp, err := c.httpClient.Put(ctx, c.path(name, "rename"), map[string]string{"name": newName})
	if err != nil {
		return nil, fmt.Errorf("renaming collection: %w", err)
	}

	return decodeCollection(resp, "parsing rename response")
}

// Properties implements arango.CollectionsClient.Properties.
func (c *CollectionsClient) Properties(ctx context.Context, name string) (*arango.CollectionProperties, error) {
	if name == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	resp, err := c.httpClient.Get(ctx, c.path(name, "properties"), nil)
	if err != nil {
		return nil, fmt.Errorf("getting collection properties: %w", err)
	}

	return decodeCollectionProperties(resp, "parsing collection properties")
}

// SetProperties implements arango.CollectionsClient.SetProperties.
func (c *CollectionsClient) SetProperties(ctx context.Context, name string, update *arango.CollectionPropertiesUpdate) (*arango.CollectionProperties, error) {
	if name == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	resp, err := c.httpClient.Put(ctx, c.path(name, "properties"), update)
	if err != nil {
		return nil, fmt.Errorf("updating collection properties: %w", err)
	}

	return decodeCollectionProperties(resp, "parsing collection properties")
}

// Count implements arango.CollectionsClient.Count.
func (c *CollectionsClient) Count(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, constants.ErrCollectionNameRequired
	}

	resp, err := c.httpClient.Get(ctx, c.path(name, "count"), nil)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}

	var payload struct {
		Count int64 `json:"count"`
	}

	err = arango.DecodePayload(resp.StatusCode, resp.Body, &payload)
	if err != nil {
		return 0, fmt.Errorf("parsing document count: %w", err)
	}

	return payload.Count, nil
}

// Figures implements arango.CollectionsClient.Figures.
func (c *CollectionsClient) Figures(ctx context.Context, name string) (*arango.CollectionFigures, error) {
	if name == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	resp, err := c.httpClient.Get(ctx, c.path(name, "figures"), nil)
	if err != nil {
		return nil, fmt.Errorf("getting collection figures: %w", err)
	}

	var figures arango.CollectionFigures

	err = arango.DecodePayload(resp.StatusCode, resp.Body, &figures)
	if err != nil {
		return nil, fmt.Errorf("parsing collection figures: %w", err)
	}

	return &figures, nil
}

// Revision implements arango.CollectionsClient.Revision.
func (c *CollectionsClient) Revision(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", constants.ErrCollectionNameRequired
	}

	resp, err := c.httpClient.Get(ctx, c.path(name, "revision"), nil)
	if err != nil {
		return "", fmt.Errorf("getting collection revision: %w", err)
	}

	var payload struct {
		Revision string `json:"revision"`
	}

	err = arango.DecodePayload(resp.StatusCode, resp.Body, &payload)
	if err != nil {
		return "", fmt.Errorf("parsing collection revision: %w", err)
	}

	return payload.Revision, nil
}

// Checksum implements arango.CollectionsClient.Checksum.
func (c *CollectionsClient) Checksum(ctx context.Context, name string, withRevisions, withData bool) (string, error) {
	if name == "" {
		return "", constants.ErrCollectionNameRequired
	}

	query := url.Values{}
	if withRevisions {
		query.Set("withRevisions", "true")
	}

	if withData {
		query.Set("withData", "true")
	}

	resp, err := c.httpClient.Get(ctx, c.path(name, "checksum"), query)
	if err != nil {
		return "", fmt.Errorf("getting collection checksum: %w", err)
	}

	var payload struct {
		Checksum string `json:"checksum"`
	}

	err = arango.DecodePayload(resp.StatusCode, resp.Body, &payload)
	if err != nil {
		return "", fmt.Errorf("parsing collection checksum: %w", err)
	}

	return payload.Checksum, nil
}

// Load implements arango.CollectionsClient.Load.
func (c *CollectionsClient) Load(ctx context.Context, name string) (*arango.Collection, error) {
	if name == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	resp, err := c.httpClient.Put(ctx, c.path(name, "load"), nil)
	if err != nil {
		return nil, fmt.Errorf("loading collection: %w", err)
	}

	return decodeCollection(resp, "parsing load response")
}

// Unload implements arango.CollectionsClient.Unload.
func (c *CollectionsClient) Unload(ctx context.Context, name string) (*arango.Collection, error) {
	if name == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	resp, err := c.httpClient.Put(ctx, c.path(name, "unload"), nil)
	if err != nil {
		return nil, fmt.Errorf("unloading collection: %w", err)
	}

	return decodeCollection(resp, "parsing unload response")
}

// RecalculateCount implements arango.CollectionsClient.RecalculateCount.
func (c *CollectionsClient) RecalculateCount(ctx context.Context, name string) error {
	if name == "" {
		return constants.ErrCollectionNameRequired
	}

	_, err := c.httpClient.Put(ctx, c.path(name, "recalculateCount"), nil)
	if err != nil {
		return fmt.Errorf("recalculating document count: %w", err)
	}

	return nil
}

// LoadIndexesIntoMemory implements arango.CollectionsClient.LoadIndexesIntoMemory.
func (c *CollectionsClient) LoadIndexesIntoMemory(ctx context.Context, name string) error {
	if name == "" {
		return constants.ErrCollectionNameRequired
	}

	_, err := c.httpClient.Put(ctx, c.path(name, "loadIndexesIntoMemory"), nil)
	if err != nil {
		return fmt.Errorf("loading indexes into memory: %w", err)
	}

	return nil
}

func decodeCollection(resp *internalhttp.Response, wrap string) (*arango.Collection, error) {
	var collection arango.Collection

	err := arango.DecodePayload(resp.StatusCode, resp.Body, &collection)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", wrap, err)
	}

	return &collection, nil
}

func decodeCollectionProperties(resp *internalhttp.Response, wrap string) (*arango.CollectionProperties, error) {
	var properties arango.CollectionProperties

	err := arango.DecodePayload(resp.StatusCode, resp.Body, &properties)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", wrap, err)
	}

	return &properties, nil
}
