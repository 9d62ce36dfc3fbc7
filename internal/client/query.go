package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fivetwenty-io/arango/internal/constants"
	internalhttp "github.com/fivetwenty-io/arango/internal/http"
	"github.com/fivetwenty-io/arango/pkg/arango"
)

// QueryClient implements arango.QueryClient. It drives the
// create → fetch-next → delete cursor protocol and implements
// arango.CursorFetcher for the cursors it hands out.
type QueryClient struct {
	httpClient   *internalhttp.Client
	database     string
	logger       arango.Logger
	closeTimeout time.Duration
}

// NewQueryClient creates a new query client.
func NewQueryClient(httpClient *internalhttp.Client, database string, logger arango.Logger, closeTimeout time.Duration) *QueryClient {
	return &QueryClient{
		httpClient:   httpClient,
		database:     database,
		logger:       logger,
		closeTimeout: closeTimeout,
	}
}

// Execute implements arango.QueryClient.Execute. A first batch with
// hasMore false yields a cursor that is already drained; no server-side
// resource exists and no delete will ever be sent for it.
func (c *QueryClient) Execute(ctx context.Context, request *arango.QueryRequest) (*arango.Cursor, error) {
	err := request.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating query request: %w", err)
	}

	resp, err := c.httpClient.Post(ctx, databasePath(c.database, constants.CursorPath), request)
	if err != nil {
		return nil, fmt.Errorf("creating cursor: %w", err)
	}

	batch, err := decodeCursorBatch(resp)
	if err != nil {
		return nil, fmt.Errorf("creating cursor: %w", err)
	}

	return arango.NewCursor(batch, c,
		arango.WithCursorLogger(c.logger),
		arango.WithCursorCloseTimeout(c.closeTimeout),
	), nil
}

// ExecuteAsync implements arango.QueryClient.ExecuteAsync: the cursor-create
// is submitted with x-arango-async: store and the stored job id is returned.
func (c *QueryClient) ExecuteAsync(ctx context.Context, request *arango.QueryRequest) (string, error) {
	err := request.Validate()
	if err != nil {
		return "", fmt.Errorf("validating query request: %w", err)
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method:  http.MethodPost,
		Path:    databasePath(c.database, constants.CursorPath),
		Headers: map[string]string{constants.HeaderAsync: constants.AsyncStore},
		Body:    request,
	})
	if err != nil {
		return "", fmt.Errorf("submitting async query: %w", err)
	}

	jobID := resp.Headers.Get(constants.HeaderAsyncID)
	if jobID == "" {
		return "", arango.ErrAsyncJobIDMissing
	}

	return jobID, nil
}

// AsyncResult implements arango.QueryClient.AsyncResult: it fetches the
// stored response of a completed async query and builds its cursor.
func (c *QueryClient) AsyncResult(ctx context.Context, jobID string) (*arango.Cursor, error) {
	resp, err := c.httpClient.Put(ctx, databasePath(c.database, constants.JobPath+"/"+jobID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching async query result: %w", err)
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, constants.ErrJobNotDone
	}

	batch, err := decodeCursorBatch(resp)
	if err != nil {
		return nil, fmt.Errorf("fetching async query result: %w", err)
	}

	return arango.NewCursor(batch, c,
		arango.WithCursorLogger(c.logger),
		arango.WithCursorCloseTimeout(c.closeTimeout),
	), nil
}

// FetchNext implements arango.CursorFetcher. A cursor-not-found answer is
// surfaced as *arango.CursorExpiredError so the sequence ends abnormally
// rather than looking like end-of-data.
func (c *QueryClient) FetchNext(ctx context.Context, id string) (*arango.CursorBatch, error) {
	resp, err := c.httpClient.Put(ctx, databasePath(c.database, constants.CursorPath+"/"+id), nil)
	if err != nil {
		if expiredErr := asCursorExpired(err); expiredErr != nil {
			return nil, expiredErr
		}

		return nil, fmt.Errorf("fetching next batch: %w", err)
	}

	batch, err := decodeCursorBatch(resp)
	if err != nil {
		return nil, fmt.Errorf("fetching next batch: %w", err)
	}

	return batch, nil
}

// Remove implements arango.CursorFetcher. Deleting a cursor the server has
// already expired reports expiry, not a generic failure.
func (c *QueryClient) Remove(ctx context.Context, id string) error {
	_, err := c.httpClient.Delete(ctx, databasePath(c.database, constants.CursorPath+"/"+id))
	if err != nil {
		if expiredErr := asCursorExpired(err); expiredErr != nil {
			return expiredErr
		}

		return fmt.Errorf("deleting cursor: %w", err)
	}

	return nil
}

// decodeCursorBatch decodes a cursor create/fetch response. A success
// envelope missing hasMore is a protocol mismatch: it must become a
// DecodeError, never a silent end-of-data.
func decodeCursorBatch(resp *internalhttp.Response) (*arango.CursorBatch, error) {
	var batch arango.CursorBatch

	err := arango.DecodePayload(resp.StatusCode, resp.Body, &batch)
	if err != nil {
		return nil, err
	}

	if batch.HasMore == nil {
		return nil, &arango.DecodeError{Err: errMissingHasMore}
	}

	return &batch, nil
}

var errMissingHasMore = errors.New("response missing hasMore field")

// asCursorExpired converts the server's cursor-not-found error.
func asCursorExpired(err error) *arango.CursorExpiredError {
	arangoErr := &arango.ArangoError{}
	if errors.As(err, &arangoErr) && arangoErr.ErrorNum == constants.ErrCursorNotFound {
		return &arango.CursorExpiredError{
			ErrorNum: arangoErr.ErrorNum,
			Message:  arangoErr.Message,
		}
	}

	return nil
}
