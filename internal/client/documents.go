package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/fivetwenty-io/arango/internal/constants"
	internalhttp "github.com/fivetwenty-io/arango/internal/http"
	"github.com/fivetwenty-io/arango/pkg/arango"
)

// DocumentsClient implements arango.DocumentsClient.
type DocumentsClient struct {
	httpClient *internalhttp.Client
	database   string
}

// NewDocumentsClient creates a new documents client.
func NewDocumentsClient(httpClient *internalhttp.Client, database string) *DocumentsClient {
	return &DocumentsClient{
		httpClient: httpClient,
		database:   database,
	}
}

func (c *DocumentsClient) path(parts ...string) string {
	path := constants.DocumentPath
	for _, part := range parts {
		path += "/" + part
	}

	return databasePath(c.database, path)
}

// Create implements arango.DocumentsClient.Create.
func (c *DocumentsClient) Create(ctx context.Context, collection string, document interface{}, opts *arango.DocumentOptions) (*arango.DocumentMeta, error) {
	if collection == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method:  http.MethodPost,
		Path:    c.path(collection),
		Query:   documentQuery(opts),
		Headers: documentHeaders(opts),
		Body:    document,
	})
	if err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}

	return decodeDocumentMeta(resp, opts, "parsing create document response")
}

// CreateMany implements arango.DocumentsClient.CreateMany. The server
// processes the batch item by item; failed items come back as in-band error
// objects and are aggregated into the returned error while the metadata of
// the successful items is still returned.
func (c *DocumentsClient) CreateMany(ctx context.Context, collection string, documents []interface{}, opts *arango.DocumentOptions) ([]arango.DocumentMeta, error) {
	if collection == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	if len(documents) == 0 {
		return nil, arango.ErrNoDocumentsProvided
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodPost,
		Path:   c.path(collection),
		Query:  documentQuery(opts),
		Body:   documents,
	})
	if err != nil {
		return nil, fmt.Errorf("creating documents: %w", err)
	}

	return decodeDocumentBatch(resp, "create")
}

// Read implements arango.DocumentsClient.Read. The fetched document is
// unmarshaled into document when it is non-nil.
func (c *DocumentsClient) Read(ctx context.Context, collection, key string, document interface{}, opts *arango.DocumentOptions) (*arango.DocumentMeta, error) {
	if collection == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	if key == "" {
		return nil, constants.ErrDocumentKeyRequired
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method:  http.MethodGet,
		Path:    c.path(collection, key),
		Headers: documentHeaders(opts),
	})
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	if resp.StatusCode == http.StatusNotModified {
		return nil, arango.ErrNotModified
	}

	var meta arango.DocumentMeta

	err = arango.DecodePayload(resp.StatusCode, resp.Body, &meta)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	if document != nil {
		err = json.Unmarshal(resp.Body, document)
		if err != nil {
			return nil, &arango.DecodeError{Err: fmt.Errorf("unmarshaling document body: %w", err)}
		}
	}

	return &meta, nil
}

// ReadHeader implements arango.DocumentsClient.ReadHeader. It issues a HEAD
// request so only the revision comes back, via the Etag header.
func (c *DocumentsClient) ReadHeader(ctx context.Context, collection, key string, opts *arango.DocumentOptions) (*arango.DocumentMeta, error) {
	if collection == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	if key == "" {
		return nil, constants.ErrDocumentKeyRequired
	}

	resp, err := c.httpClient.Head(ctx, c.path(collection, key), documentHeaders(opts))
	if err != nil {
		return nil, fmt.Errorf("reading document header: %w", err)
	}

	if resp.StatusCode == http.StatusNotModified {
		return nil, arango.ErrNotModified
	}

	return &arango.DocumentMeta{
		ID:  collection + "/" + key,
		Key: key,
		Rev: strings.Trim(resp.Headers.Get("Etag"), `"`),
	}, nil
}

// Update implements arango.DocumentsClient.Update.
func (c *DocumentsClient) Update(ctx context.Context, collection, key string, patch interface{}, opts *arango.DocumentOptions) (*arango.DocumentMeta, error) {
	if collection == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	if key == "" {
		return nil, constants.ErrDocumentKeyRequired
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method:  http.MethodPatch,
		Path:    c.path(collection, key),
		Query:   documentQuery(opts),
		Headers: documentHeaders(opts),
		Body:    patch,
	})
	if err != nil {
		return nil, fmt.Errorf("updating document: %w", err)
	}

	return decodeDocumentMeta(resp, opts, "parsing update document response")
}

// UpdateMany implements arango.DocumentsClient.UpdateMany. Each patch must
// carry its _key.
func (c *DocumentsClient) UpdateMany(ctx context.Context, collection string, patches []interface{}, opts *arango.DocumentOptions) ([]arango.DocumentMeta, error) {
	if collection == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	if len(patches) == 0 {
		return nil, arango.ErrNoDocumentsProvided
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodPatch,
		Path:   c.path(collection),
		Query:  documentQuery(opts),
		Body:   patches,
	})
	if err != nil {
		return nil, fmt.Errorf("updating documents: %w", err)
	}

	return decodeDocumentBatch(resp, "update")
}

// Replace implements arango.DocumentsClient.Replace.
func (c *DocumentsClient) Replace(ctx context.Context, collection, key string, document interface{}, opts *arango.DocumentOptions) (*arango.DocumentMeta, error) {
	if collection == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	if key == "" {
		return nil, constants.ErrDocumentKeyRequired
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method:  http.MethodPut,
		Path:    c.path(collection, key),
		Query:   documentQuery(opts),
		Headers: documentHeaders(opts),
		Body:    document,
	})
	if err != nil {
		return nil, fmt.Errorf("replacing document: %w", err)
	}

	return decodeDocumentMeta(resp, opts, "parsing replace document response")
}

// ReplaceMany implements arango.DocumentsClient.ReplaceMany.
func (c *DocumentsClient) ReplaceMany(ctx context.Context, collection string, documents []interface{}, opts *arango.DocumentOptions) ([]arango.DocumentMeta, error) {
	if collection == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	if len(documents) == 0 {
		return nil, arango.ErrNoDocumentsProvided
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodPut,
		Path:   c.path(collection),
		Query:  documentQuery(opts),
		Body:   documents,
	})
	if err != nil {
		return nil, fmt.Errorf("replacing documents: %w", err)
	}

	return decodeDocumentBatch(resp, "replace")
}

// Delete implements arango.DocumentsClient.Delete.
func (c *DocumentsClient) Delete(ctx context.Context, collection, key string, opts *arango.DocumentOptions) (*arango.DocumentMeta, error) {
	if collection == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	if key == "" {
		return nil, constants.ErrDocumentKeyRequired
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method:  http.MethodDelete,
		Path:    c.path(collection, key),
		Query:   documentQuery(opts),
		Headers: documentHeaders(opts),
	})
	if err != nil {
		return nil, fmt.Errorf("deleting document: %w", err)
	}

	return decodeDocumentMeta(resp, opts, "parsing delete document response")
}

// DeleteMany implements arango.DocumentsClient.DeleteMany.
func (c *DocumentsClient) DeleteMany(ctx context.Context, collection string, keys []string, opts *arango.DocumentOptions) ([]arango.DocumentMeta, error) {
	if collection == "" {
		return nil, constants.ErrCollectionNameRequired
	}

	if len(keys) == 0 {
		return nil, arango.ErrNoDocumentsProvided
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodDelete,
		Path:   c.path(collection),
		Query:  documentQuery(opts),
		Body:   keys,
	})
	if err != nil {
		return nil, fmt.Errorf("deleting documents: %w", err)
	}

	return decodeDocumentBatch(resp, "delete")
}

func documentQuery(opts *arango.DocumentOptions) url.Values {
	if opts == nil {
		return nil
	}

	query := url.Values{}

	if opts.WaitForSync {
		query.Set("waitForSync", "true")
	}

	if opts.ReturnNew {
		query.Set("returnNew", "true")
	}

	if opts.ReturnOld {
		query.Set("returnOld", "true")
	}

	if opts.Silent {
		query.Set("silent", "true")
	}

	if opts.Overwrite {
		query.Set("overwrite", "true")
	}

	if opts.OverwriteMode != "" {
		query.Set("overwriteMode", opts.OverwriteMode)
	}

	if opts.KeepNull != nil {
		query.Set("keepNull", boolString(*opts.KeepNull))
	}

	if opts.MergeObjects != nil {
		query.Set("mergeObjects", boolString(*opts.MergeObjects))
	}

	if len(query) == 0 {
		return nil
	}

	return query
}

func documentHeaders(opts *arango.DocumentOptions) map[string]string {
	if opts == nil {
		return nil
	}

	headers := make(map[string]string)

	if opts.IfMatch != "" {
		headers[constants.HeaderIfMatch] = quoteEtag(opts.IfMatch)
	}

	if opts.IfNoneMatch != "" {
		headers[constants.HeaderIfNoneMatch] = quoteEtag(opts.IfNoneMatch)
	}

	if len(headers) == 0 {
		return nil
	}

	return headers
}

// quoteEtag wraps a bare revision in the quotes the precondition headers
// expect, leaving already-quoted values alone.
func quoteEtag(rev string) string {
	if strings.HasPrefix(rev, `"`) {
		return rev
	}

	return `"` + rev + `"`
}

func boolString(value bool) string {
	if value {
		return "true"
	}

	return "false"
}

func decodeDocumentMeta(resp *internalhttp.Response, opts *arango.DocumentOptions, wrap string) (*arango.DocumentMeta, error) {
	// Silent writes answer with an empty body.
	if opts != nil && opts.Silent && len(resp.Body) == 0 {
		return &arango.DocumentMeta{}, nil
	}

	var meta arango.DocumentMeta

	err := arango.DecodePayload(resp.StatusCode, resp.Body, &meta)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", wrap, err)
	}

	return &meta, nil
}

// batchItem is one entry of a batch write response: either document metadata
// or an in-band error envelope, distinguished by the error flag.
type batchItem struct {
	arango.DocumentMeta

	Error        bool   `json:"error"`
	ErrorNum     int    `json:"errorNum"`
	ErrorMessage string `json:"errorMessage"`
}

func decodeDocumentBatch(resp *internalhttp.Response, operation string) ([]arango.DocumentMeta, error) {
	var items []batchItem

	err := json.Unmarshal(resp.Body, &items)
	if err != nil {
		// The body was not an array: a request-level failure, so parse it
		// as a regular error envelope.
		var envelope struct{}

		decodeErr := arango.DecodePayload(resp.StatusCode, resp.Body, &envelope)
		if decodeErr != nil {
			return nil, fmt.Errorf("batch %s: %w", operation, decodeErr)
		}

		return nil, &arango.DecodeError{Err: fmt.Errorf("unmarshaling batch %s response: %w", operation, err)}
	}

	var (
		metas  []arango.DocumentMeta
		result *multierror.Error
	)

	for i, item := range items {
		if item.Error {
			result = multierror.Append(result, fmt.Errorf("document %d: %w", i, &arango.ArangoError{
				Code:     resp.StatusCode,
				ErrorNum: item.ErrorNum,
				Message:  item.ErrorMessage,
			}))

			continue
		}

		metas = append(metas, item.DocumentMeta)
	}

	return metas, result.ErrorOrNil()
}
