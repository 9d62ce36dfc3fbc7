package arango

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/arango/internal/constants"
)

// CursorFetcher drives the server side of the cursor protocol. It is
// implemented by the query client and mocked in tests.
type CursorFetcher interface {
	// FetchNext retrieves the next batch of an open cursor.
	FetchNext(ctx context.Context, id string) (*CursorBatch, error)
	// Remove releases a server-side cursor before exhaustion.
	Remove(ctx context.Context, id string) error
}

// Cursor is a lazy, non-restartable, finite sequence of result documents
// drawn from a server-side query cursor. Batches are fetched on demand as the
// current batch is exhausted.
//
// A Cursor is not safe for concurrent iteration: only one Next may be in
// flight at a time, and a second concurrent call fails with ErrCursorBusy.
// Distinct cursors may be consumed concurrently.
//
// Callers must Close the cursor when abandoning iteration early; after normal
// exhaustion Close is a no-op. The usual pattern:
//
//	cursor, err := client.Query().Execute(ctx, req)
//	if err != nil { ... }
//	defer cursor.Close(ctx)
//	for cursor.Next(ctx) {
//	    var doc Doc
//	    if err := cursor.Decode(&doc); err != nil { ... }
//	}
//	if err := cursor.Err(); err != nil { ... }
type Cursor struct {
	mu           sync.Mutex
	fetcher      CursorFetcher
	logger       Logger
	closeTimeout time.Duration

	id      string
	batch   []json.RawMessage
	pos     int
	hasMore bool
	count   *int64
	extra   *CursorExtra
	cached  bool

	current  json.RawMessage
	err      error
	fetching bool
	closed   bool
}

// CursorOption configures a Cursor at construction.
type CursorOption func(*Cursor)

// WithCursorLogger sets the logger used for best-effort close failures.
func WithCursorLogger(logger Logger) CursorOption {
	return func(c *Cursor) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCursorCloseTimeout bounds the delete request sent when the cursor is
// closed before exhaustion.
func WithCursorCloseTimeout(d time.Duration) CursorOption {
	return func(c *Cursor) {
		if d > 0 {
			c.closeTimeout = d
		}
	}
}

// NewCursor builds a Cursor from the response of a successful create call.
// A first batch with hasMore == false never opened a server-side resource, so
// the cursor starts in its terminal state and Close sends nothing.
func NewCursor(first *CursorBatch, fetcher CursorFetcher, opts ...CursorOption) *Cursor {
	cursor := &Cursor{
		fetcher:      fetcher,
		logger:       noopLogger{},
		closeTimeout: constants.DefaultCursorCloseTimeout,
		id:           first.ID,
		batch:        first.Result,
		hasMore:      first.HasMore != nil && *first.HasMore,
		count:        first.Count,
		extra:        first.Extra,
		cached:       first.Cached,
	}

	for _, opt := range opts {
		opt(cursor)
	}

	return cursor
}

// Next advances the cursor to the next document, fetching the next batch from
// the server when the current one is exhausted. It returns false when the
// sequence ends, normally or abnormally; Err distinguishes the two.
func (c *Cursor) Next(ctx context.Context) bool {
	for {
		c.mu.Lock()

		if c.err != nil || c.closed {
			c.mu.Unlock()

			return false
		}

		if c.pos < len(c.batch) {
			c.current = c.batch[c.pos]
			c.pos++
			c.mu.Unlock()

			return true
		}

		if !c.hasMore {
			// Drained: the server already discarded the cursor.
			c.closed = true
			c.mu.Unlock()

			return false
		}

		if c.fetching {
			c.err = ErrCursorBusy
			c.mu.Unlock()

			return false
		}

		c.fetching = true
		id := c.id
		c.mu.Unlock()

		batch, err := c.fetcher.FetchNext(ctx, id)

		c.mu.Lock()
		c.fetching = false

		if err != nil {
			c.err = err
			c.mu.Unlock()

			return false
		}

		c.batch = batch.Result
		c.pos = 0
		c.hasMore = batch.HasMore != nil && *batch.HasMore

		if c.extra == nil && batch.Extra != nil {
			c.extra = batch.Extra
		}

		c.mu.Unlock()
		// An empty intermediate batch loops back into another fetch.
	}
}

// Decode unmarshals the current document into v.
func (c *Cursor) Decode(v interface{}) error {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	if current == nil {
		return ErrCursorClosed
	}

	err := json.Unmarshal(current, v)
	if err != nil {
		return &DecodeError{Err: err}
	}

	return nil
}

// Current returns the raw bytes of the current document.
func (c *Cursor) Current() json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current
}

// Err returns the error that terminated the sequence abnormally, or nil after
// normal exhaustion.
func (c *Cursor) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.err
}

// ID returns the server-side cursor id; empty for single-batch results.
func (c *Cursor) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.id
}

// Count returns the total result count when the query requested it. The value
// is known after create and constant across fetches.
func (c *Cursor) Count() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == nil {
		return 0, false
	}

	return *c.count, true
}

// Statistics returns the query statistics and warnings, when present.
func (c *Cursor) Statistics() *CursorExtra {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.extra
}

// Cached reports whether the result was served from the query cache.
func (c *Cursor) Cached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cached
}

// HasMore reports whether the server holds further batches.
func (c *Cursor) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hasMore || c.pos < len(c.batch)
}

// Close releases the server-side cursor. It sends a delete request only when
// the cursor still held batches at the last point of consumption; a drained
// or already-closed cursor closes without network activity. Close is
// idempotent and never sends a second delete.
//
// The delete runs on a context detached from ctx's cancellation, bounded by
// the close timeout, so abandoning a sequence with a cancelled context still
// releases the cursor.
func (c *Cursor) Close(ctx context.Context) error {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()

		return nil
	}

	c.closed = true
	needsDelete := c.hasMore && c.id != ""
	id := c.id
	c.mu.Unlock()

	if !needsDelete {
		return nil
	}

	deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.closeTimeout)
	defer cancel()

	err := c.fetcher.Remove(deleteCtx, id)
	if err != nil {
		c.logger.Warn("failed to release cursor", map[string]interface{}{
			"cursor_id": id,
			"error":     err.Error(),
		})

		return fmt.Errorf("releasing cursor %s: %w", id, err)
	}

	return nil
}

// All drains the remaining documents into out, which must be a pointer to a
// slice, and closes the cursor.
func (c *Cursor) All(ctx context.Context, out interface{}) error {
	defer func() {
		_ = c.Close(ctx)
	}()

	var docs []json.RawMessage

	for c.Next(ctx) {
		docs = append(docs, c.Current())
	}

	err := c.Err()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(docs)
	if err != nil {
		return &DecodeError{Err: err}
	}

	err = json.Unmarshal(raw, out)
	if err != nil {
		return &DecodeError{Err: err}
	}

	return nil
}
