package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/arango/pkg/arango"
)

func TestJobsClient_Status(t *testing.T) {
	t.Parallel()

	t.Run("done", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, testPath("/_api/job/job-1"), request.URL.Path)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		status, err := client.Jobs().Status(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, arango.JobStatusDone, status)
	})

	t.Run("pending", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		status, err := client.Jobs().Status(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, arango.JobStatusPending, status)
	})

	t.Run("unknown job", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writeArangoError(writer, http.StatusNotFound, 404, "job not found")
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		_, err := client.Jobs().Status(context.Background(), "gone")
		require.Error(t, err)
	})
}

func TestJobsClient_List(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, testPath("/_api/job/done"), request.URL.Path)
		writeJSON(writer, http.StatusOK, []string{"job-1", "job-2"})
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	ids, err := client.Jobs().List(context.Background(), arango.JobsDone)
	require.NoError(t, err)
	assert.Equal(t, []string{"job-1", "job-2"}, ids)
}

func TestJobsClient_List_NonArrayBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]interface{}{"result": []string{"job-1"}})
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	_, err := client.Jobs().List(context.Background(), arango.JobsPending)
	require.Error(t, err)

	var decodeErr *arango.DecodeError

	require.ErrorAs(t, err, &decodeErr)
}

func TestJobsClient_Cancel(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, testPath("/_api/job/job-1/cancel"), request.URL.Path)
		assert.Equal(t, http.MethodPut, request.Method)
		writeJSON(writer, http.StatusOK, map[string]interface{}{"result": true})
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	require.NoError(t, client.Jobs().Cancel(context.Background(), "job-1"))
}

func TestJobsClient_Delete(t *testing.T) {
	t.Parallel()

	var paths []string

	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodDelete, request.Method)

		mu.Lock()
		paths = append(paths, request.URL.Path)
		mu.Unlock()

		writeJSON(writer, http.StatusOK, map[string]interface{}{"result": true})
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	require.NoError(t, client.Jobs().Delete(context.Background(), "job-1"))
	require.NoError(t, client.Jobs().Delete(context.Background(), "all"))
	require.NoError(t, client.Jobs().Delete(context.Background(), "expired"))

	assert.Equal(t, []string{
		testPath("/_api/job/job-1"),
		testPath("/_api/job/all"),
		testPath("/_api/job/expired"),
	}, paths)
}

func TestJobsClient_Wait(t *testing.T) {
	t.Parallel()

	t.Run("completes after polling", func(t *testing.T) {
		t.Parallel()

		var (
			mu    sync.Mutex
			polls int
		)

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			mu.Lock()
			polls++
			current := polls
			mu.Unlock()

			if current < 3 {
				writer.WriteHeader(http.StatusNoContent)

				return
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		err := client.Jobs().Wait(context.Background(), "job-1")
		require.NoError(t, err)

		mu.Lock()
		defer mu.Unlock()
		assert.GreaterOrEqual(t, polls, 3)
	})

	t.Run("canceled context stops polling", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		err := client.Jobs().Wait(ctx, "job-1")
		require.Error(t, err)
	})

	t.Run("vanished job is terminal", func(t *testing.T) {
		t.Parallel()

		var (
			mu    sync.Mutex
			polls int
		)

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			mu.Lock()
			polls++
			mu.Unlock()

			writeArangoError(writer, http.StatusNotFound, 404, "job not found")
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		err := client.Jobs().Wait(context.Background(), "gone")
		require.Error(t, err)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, polls)
	})
}

func TestJobsClient_EmptyIDRejected(t *testing.T) {
	t.Parallel()

	client := NewTestClient("http://unreachable.invalid")

	_, err := client.Jobs().Status(context.Background(), "")
	require.Error(t, err)

	require.Error(t, client.Jobs().Cancel(context.Background(), ""))
	require.Error(t, client.Jobs().Delete(context.Background(), ""))
	require.Error(t, client.Jobs().Wait(context.Background(), ""))
}
