package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/arango/internal/auth"
	"github.com/fivetwenty-io/arango/internal/client"
	"github.com/fivetwenty-io/arango/pkg/arango"
)

// cursorServer serves the cursor protocol for one query: a create batch and
// a sequence of follow-up batches keyed by cursor id. It counts the fetch and
// delete requests so tests can assert the exact wire traffic.
type cursorServer struct {
	t *testing.T

	mu      sync.Mutex
	pages   [][]string
	next    int
	id      string
	fetches int
	deletes int
	deleted bool
}

func (s *cursorServer) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fetches
}

func (s *cursorServer) deleteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deletes
}

func newCursorServer(t *testing.T, id string, pages [][]string) *cursorServer {
	t.Helper()

	return &cursorServer{t: t, id: id, pages: pages}
}

func (s *cursorServer) page(index int) map[string]interface{} {
	docs := make([]json.RawMessage, 0, len(s.pages[index]))
	for _, doc := range s.pages[index] {
		docs = append(docs, json.RawMessage(doc))
	}

	body := map[string]interface{}{
		"error":   false,
		"code":    http.StatusCreated,
		"result":  docs,
		"hasMore": index < len(s.pages)-1,
	}

	if index < len(s.pages)-1 {
		body["id"] = s.id
	}

	return body
}

func (s *cursorServer) handler() http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		switch {
		case request.Method == http.MethodPost && strings.HasSuffix(request.URL.Path, "/_api/cursor"):
			s.next = 1

			writeJSONResponse(writer, http.StatusCreated, s.page(0))
		case request.Method == http.MethodPut && strings.HasSuffix(request.URL.Path, "/_api/cursor/"+s.id):
			s.fetches++

			if s.deleted || s.next >= len(s.pages) {
				writeErrorResponse(writer, http.StatusNotFound, 1600, "cursor not found")

				return
			}

			index := s.next
			s.next++

			writeJSONResponse(writer, http.StatusOK, s.page(index))
		case request.Method == http.MethodDelete && strings.HasSuffix(request.URL.Path, "/_api/cursor/"+s.id):
			s.deletes++
			s.deleted = true

			writeJSONResponse(writer, http.StatusAccepted, map[string]interface{}{
				"error": false,
				"code":  http.StatusAccepted,
				"id":    s.id,
			})
		default:
			s.t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
			writer.WriteHeader(http.StatusTeapot)
		}
	}
}

func writeJSONResponse(writer http.ResponseWriter, statusCode int, body interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(body)
}

func writeErrorResponse(writer http.ResponseWriter, statusCode, errorNum int, message string) {
	writeJSONResponse(writer, statusCode, map[string]interface{}{
		"error":        true,
		"code":         statusCode,
		"errorNum":     errorNum,
		"errorMessage": message,
	})
}

func drainCursor(t *testing.T, cursor *arango.Cursor) []string {
	t.Helper()

	var docs []string

	ctx := context.Background()
	for cursor.Next(ctx) {
		var doc map[string]string

		require.NoError(t, cursor.Decode(&doc))
		docs = append(docs, doc["name"])
	}

	require.NoError(t, cursor.Err())

	return docs
}

func TestQueryClient_Execute_SingleBatch(t *testing.T) {
	t.Parallel()

	server := newCursorServer(t, "unused", [][]string{
		{`{"name":"a"}`, `{"name":"b"}`},
	})
	ts := httptest.NewServer(server.handler())
	defer ts.Close()

	testClient := client.NewTestClient(ts.URL)

	cursor, err := testClient.Query().Execute(context.Background(), arango.NewQueryRequest("FOR d IN docs RETURN d"))
	require.NoError(t, err)

	docs := drainCursor(t, cursor)
	assert.Equal(t, []string{"a", "b"}, docs)

	// The whole result arrived with the create response: no server-side
	// cursor exists, so nothing else may go over the wire.
	assert.Equal(t, 0, server.fetchCount())
	assert.Equal(t, 0, server.deleteCount())

	require.NoError(t, cursor.Close(context.Background()))
	assert.Equal(t, 0, server.deleteCount())
}

func TestQueryClient_Execute_MultiBatch(t *testing.T) {
	t.Parallel()

	server := newCursorServer(t, "cursor-77", [][]string{
		{`{"name":"a"}`, `{"name":"b"}`},
		{`{"name":"c"}`, `{"name":"d"}`},
		{`{"name":"e"}`},
	})
	ts := httptest.NewServer(server.handler())
	defer ts.Close()

	testClient := client.NewTestClient(ts.URL)

	request := arango.NewQueryRequest("FOR d IN docs RETURN d").WithBatchSize(2)

	cursor, err := testClient.Query().Execute(context.Background(), request)
	require.NoError(t, err)

	docs := drainCursor(t, cursor)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, docs)

	// Exhaustion consumes the server-side cursor; closing afterwards must
	// not turn into a delete of a resource that no longer exists.
	assert.Equal(t, 2, server.fetchCount())
	assert.Equal(t, 0, server.deleteCount())

	require.NoError(t, cursor.Close(context.Background()))
	assert.Equal(t, 0, server.deleteCount())
}

func TestQueryClient_Execute_EarlyClose(t *testing.T) {
	t.Parallel()

	server := newCursorServer(t, "cursor-12", [][]string{
		{`{"name":"a"}`, `{"name":"b"}`},
		{`{"name":"c"}`},
	})
	ts := httptest.NewServer(server.handler())
	defer ts.Close()

	testClient := client.NewTestClient(ts.URL)

	cursor, err := testClient.Query().Execute(context.Background(), arango.NewQueryRequest("FOR d IN docs RETURN d"))
	require.NoError(t, err)

	require.True(t, cursor.Next(context.Background()))
	require.NoError(t, cursor.Close(context.Background()))

	// Abandoning a live cursor must release the server-side resource,
	// exactly once even when Close is called again.
	assert.Equal(t, 0, server.fetchCount())
	assert.Equal(t, 1, server.deleteCount())

	require.NoError(t, cursor.Close(context.Background()))
	assert.Equal(t, 1, server.deleteCount())
}

func TestQueryClient_Execute_EarlyStopAcrossPages(t *testing.T) {
	t.Parallel()

	// Five documents in pages of two; the consumer stops at the fifth
	// document while the server still reports more. Two follow-up fetches
	// bring in pages two and three, and the stop releases the cursor.
	server := newCursorServer(t, "cursor-5", [][]string{
		{`{"name":"1"}`, `{"name":"2"}`},
		{`{"name":"3"}`, `{"name":"4"}`},
		{`{"name":"5"}`, `{"name":"6"}`},
		{`{"name":"7"}`},
	})
	ts := httptest.NewServer(server.handler())
	defer ts.Close()

	testClient := client.NewTestClient(ts.URL)

	cursor, err := testClient.Query().Execute(context.Background(), arango.NewQueryRequest("FOR d IN docs RETURN d"))
	require.NoError(t, err)

	ctx := context.Background()
	seen := 0

	for seen < 5 && cursor.Next(ctx) {
		seen++
	}

	require.Equal(t, 5, seen)
	require.NoError(t, cursor.Close(ctx))

	assert.Equal(t, 2, server.fetchCount())
	assert.Equal(t, 1, server.deleteCount())
}

func TestQueryClient_Execute_ExpiredMidStream(t *testing.T) {
	t.Parallel()

	server := newCursorServer(t, "cursor-dead", [][]string{
		{`{"name":"a"}`},
		{`{"name":"b"}`},
	})
	ts := httptest.NewServer(server.handler())
	defer ts.Close()

	testClient := client.NewTestClient(ts.URL)

	cursor, err := testClient.Query().Execute(context.Background(), arango.NewQueryRequest("FOR d IN docs RETURN d"))
	require.NoError(t, err)

	ctx := context.Background()
	require.True(t, cursor.Next(ctx))

	// The server forgets the cursor between batches.
	server.mu.Lock()
	server.deleted = true
	server.mu.Unlock()

	assert.False(t, cursor.Next(ctx))

	// Expiry is an abnormal termination, never a clean end-of-data.
	require.Error(t, cursor.Err())
	assert.True(t, arango.IsCursorExpired(cursor.Err()))

	expiredErr := &arango.CursorExpiredError{}
	require.ErrorAs(t, cursor.Err(), &expiredErr)
	assert.Equal(t, 1600, expiredErr.ErrorNum)
}

func TestQueryClient_Execute_MissingHasMore(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeJSONResponse(writer, http.StatusCreated, map[string]interface{}{
			"error":  false,
			"code":   http.StatusCreated,
			"result": []json.RawMessage{json.RawMessage(`{"name":"a"}`)},
		})
	}))
	defer ts.Close()

	testClient := client.NewTestClient(ts.URL)

	cursor, err := testClient.Query().Execute(context.Background(), arango.NewQueryRequest("FOR d IN docs RETURN d"))
	require.Error(t, err)
	assert.Nil(t, cursor)

	decodeErr := &arango.DecodeError{}
	require.ErrorAs(t, err, &decodeErr)
	assert.Contains(t, err.Error(), "hasMore")
}

func TestQueryClient_Execute_ValidationRejectsEmptyQuery(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		t.Error("request must not reach the server")
	}))
	defer ts.Close()

	testClient := client.NewTestClient(ts.URL)

	cursor, err := testClient.Query().Execute(context.Background(), arango.NewQueryRequest(""))
	require.Error(t, err)
	assert.Nil(t, cursor)
}

func TestQueryClient_Execute_ServerError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeErrorResponse(writer, http.StatusBadRequest, 1501, "syntax error near 'RETRUN'")
	}))
	defer ts.Close()

	testClient := client.NewTestClient(ts.URL)

	cursor, err := testClient.Query().Execute(context.Background(), arango.NewQueryRequest("FOR d IN docs RETRUN d"))
	require.Error(t, err)
	assert.Nil(t, cursor)

	arangoErr := &arango.ArangoError{}
	require.ErrorAs(t, err, &arangoErr)
	assert.Equal(t, 1501, arangoErr.ErrorNum)
}

func TestQueryClient_ExecuteAsync(t *testing.T) {
	t.Parallel()

	t.Run("returns stored job id", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "store", request.Header.Get("x-arango-async"))
			writer.Header().Set("x-arango-async-id", "job-42")
			writer.WriteHeader(http.StatusAccepted)
		}))
		defer ts.Close()

		testClient := client.NewTestClient(ts.URL)

		jobID, err := testClient.Query().ExecuteAsync(context.Background(), arango.NewQueryRequest("RETURN 1"))
		require.NoError(t, err)
		assert.Equal(t, "job-42", jobID)
	})

	t.Run("missing job id header", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusAccepted)
		}))
		defer ts.Close()

		testClient := client.NewTestClient(ts.URL)

		_, err := testClient.Query().ExecuteAsync(context.Background(), arango.NewQueryRequest("RETURN 1"))
		require.ErrorIs(t, err, arango.ErrAsyncJobIDMissing)
	})
}

func TestQueryClient_AsyncResult(t *testing.T) {
	t.Parallel()

	t.Run("job still pending", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPut, request.Method)
			writer.WriteHeader(http.StatusNoContent)
		}))
		defer ts.Close()

		testClient := client.NewTestClient(ts.URL)

		_, err := testClient.Query().AsyncResult(context.Background(), "job-42")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not completed")
	})

	t.Run("job done", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writeJSONResponse(writer, http.StatusCreated, map[string]interface{}{
				"error":   false,
				"code":    http.StatusCreated,
				"result":  []json.RawMessage{json.RawMessage(`{"name":"a"}`)},
				"hasMore": false,
			})
		}))
		defer ts.Close()

		testClient := client.NewTestClient(ts.URL)

		cursor, err := testClient.Query().AsyncResult(context.Background(), "job-42")
		require.NoError(t, err)

		docs := drainCursor(t, cursor)
		assert.Equal(t, []string{"a"}, docs)
	})
}

// TestQueryClient_ConcurrentRenewalCoalesces drives several queries into a
// simultaneous 401 and checks that the resulting renewals collapse into one
// issuance request, after which every query succeeds on its retry.
func TestQueryClient_ConcurrentRenewalCoalesces(t *testing.T) {
	t.Parallel()

	const workers = 5

	var authCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/_open/auth", func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&authCalls, 1)

		// Hold the renewal long enough for every worker's 401 to land
		// inside the in-flight window.
		time.Sleep(200 * time.Millisecond)
		writeJSONResponse(writer, http.StatusOK, map[string]string{"jwt": "fresh-token"})
	})
	mux.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		if request.Header.Get("Authorization") != "Bearer fresh-token" {
			writeErrorResponse(writer, http.StatusUnauthorized, 11, "not authorized")

			return
		}

		writeJSONResponse(writer, http.StatusCreated, map[string]interface{}{
			"error":   false,
			"code":    http.StatusCreated,
			"result":  []json.RawMessage{json.RawMessage(`{"name":"a"}`)},
			"hasMore": false,
		})
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	manager := auth.NewJWTTokenManager(&auth.JWTConfig{
		AuthURL:  ts.URL + "/_open/auth",
		Username: "root",
		Password: "secret",
	})
	manager.SetToken("stale-token", time.Now().Add(time.Hour))

	testClient, err := client.NewWithTokenManager(&arango.Config{Endpoint: ts.URL}, manager)
	require.NoError(t, err)

	var waitGroup sync.WaitGroup

	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()

			cursor, execErr := testClient.Query().Execute(context.Background(), arango.NewQueryRequest("RETURN 1"))
			if execErr != nil {
				errs <- execErr

				return
			}

			for cursor.Next(context.Background()) {
			}

			errs <- cursor.Err()
		}()
	}

	waitGroup.Wait()
	close(errs)

	for workerErr := range errs {
		require.NoError(t, workerErr)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&authCalls))
}

func TestQueryClient_CursorCountAndStats(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		var body arango.QueryRequest

		require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
		assert.True(t, body.Count)
		assert.Equal(t, "FOR d IN @@col RETURN d", body.Query)
		assert.Equal(t, "docs", body.BindVars["@col"])

		writeJSONResponse(writer, http.StatusCreated, map[string]interface{}{
			"error":   false,
			"code":    http.StatusCreated,
			"result":  []json.RawMessage{json.RawMessage(`{"name":"a"}`)},
			"hasMore": false,
			"count":   1,
			"cached":  false,
			"extra": map[string]interface{}{
				"stats": map[string]interface{}{
					"scannedFull":   1,
					"executionTime": 0.0015,
				},
			},
		})
	}))
	defer ts.Close()

	testClient := client.NewTestClient(ts.URL)

	request := arango.NewQueryRequest("FOR d IN @@col RETURN d").
		WithBindVar("@col", "docs").
		WithCount()

	cursor, err := testClient.Query().Execute(context.Background(), request)
	require.NoError(t, err)

	count, ok := cursor.Count()
	require.True(t, ok)
	assert.Equal(t, int64(1), count)

	stats := cursor.Statistics()
	require.NotNil(t, stats)
	require.NotNil(t, stats.Stats)
	assert.Equal(t, int64(1), stats.Stats.ScannedFull)
	assert.InDelta(t, 0.0015, stats.Stats.ExecutionTime, 1e-9)
	assert.False(t, cursor.Cached())
}

func TestQueryClient_FetchReentrance(t *testing.T) {
	t.Parallel()

	fetchStarted := make(chan struct{})
	release := make(chan struct{})

	var startedOnce sync.Once

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		if request.Method == http.MethodPost {
			writeJSONResponse(writer, http.StatusCreated, map[string]interface{}{
				"error":   false,
				"code":    http.StatusCreated,
				"id":      "cursor-1",
				"result":  []json.RawMessage{json.RawMessage(`{"name":"a"}`)},
				"hasMore": true,
			})

			return
		}

		// Hold the fetch open until the reentrant call has been made.
		startedOnce.Do(func() { close(fetchStarted) })
		<-release

		writeJSONResponse(writer, http.StatusOK, map[string]interface{}{
			"error":   false,
			"code":    http.StatusOK,
			"result":  []json.RawMessage{},
			"hasMore": false,
		})
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	testClient := client.NewTestClient(ts.URL)

	cursor, err := testClient.Query().Execute(context.Background(), arango.NewQueryRequest("FOR d IN docs RETURN d"))
	require.NoError(t, err)

	ctx := context.Background()
	require.True(t, cursor.Next(ctx))

	done := make(chan struct{})

	go func() {
		defer close(done)
		// Drains the local batch, then blocks inside the fetch.
		cursor.Next(ctx)
	}()

	// Once the background Next is inside the network call, a second entry
	// must fail fast instead of racing it.
	<-fetchStarted

	assert.False(t, cursor.Next(ctx))
	assert.ErrorIs(t, cursor.Err(), arango.ErrCursorBusy)

	close(release)
	<-done
}
