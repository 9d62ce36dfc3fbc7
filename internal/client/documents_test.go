package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/arango/pkg/arango"
)

type orderDoc struct {
	Key    string `json:"_key,omitempty"`
	Number string `json:"number"`
	Total  int    `json:"total"`
}

func TestDocumentsClient_Create(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, testPath("/_api/document/orders"), request.URL.Path)
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "true", request.URL.Query().Get("returnNew"))

		var doc orderDoc

		require.NoError(t, json.NewDecoder(request.Body).Decode(&doc))
		assert.Equal(t, "ORD-1", doc.Number)

		writeJSON(writer, http.StatusCreated, map[string]interface{}{
			"_id":  "orders/4711",
			"_key": "4711",
			"_rev": "_cyim3ji---",
			"new":  map[string]interface{}{"_key": "4711", "number": "ORD-1", "total": 99},
		})
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	meta, err := client.Documents().Create(context.Background(), "orders",
		&orderDoc{Number: "ORD-1", Total: 99},
		&arango.DocumentOptions{ReturnNew: true},
	)
	require.NoError(t, err)
	assert.Equal(t, "orders/4711", meta.ID)
	assert.Equal(t, "4711", meta.Key)
	assert.NotEmpty(t, meta.New)
}

func TestDocumentsClient_CreateMany(t *testing.T) {
	t.Parallel()

	t.Run("all succeed", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			var docs []orderDoc

			require.NoError(t, json.NewDecoder(request.Body).Decode(&docs))
			assert.Len(t, docs, 2)

			writeJSON(writer, http.StatusAccepted, []map[string]interface{}{
				{"_id": "orders/1", "_key": "1", "_rev": "_a"},
				{"_id": "orders/2", "_key": "2", "_rev": "_b"},
			})
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		metas, err := client.Documents().CreateMany(context.Background(), "orders",
			[]interface{}{&orderDoc{Number: "ORD-1"}, &orderDoc{Number: "ORD-2"}}, nil)
		require.NoError(t, err)
		require.Len(t, metas, 2)
		assert.Equal(t, "1", metas[0].Key)
	})

	t.Run("empty batch is rejected without a round trip", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			t.Error("no request expected for an empty batch")
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		_, err := client.Documents().CreateMany(context.Background(), "orders", nil, nil)
		require.ErrorIs(t, err, arango.ErrNoDocumentsProvided)

		_, err = client.Documents().DeleteMany(context.Background(), "orders", []string{}, nil)
		require.ErrorIs(t, err, arango.ErrNoDocumentsProvided)
	})

	t.Run("partial failure keeps successes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writeJSON(writer, http.StatusAccepted, []map[string]interface{}{
				{"_id": "orders/1", "_key": "1", "_rev": "_a"},
				{"error": true, "errorNum": 1210, "errorMessage": "unique constraint violated"},
				{"_id": "orders/3", "_key": "3", "_rev": "_c"},
			})
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		metas, err := client.Documents().CreateMany(context.Background(), "orders",
			[]interface{}{&orderDoc{}, &orderDoc{}, &orderDoc{}}, nil)

		require.Error(t, err)
		require.Len(t, metas, 2)
		assert.True(t, arango.IsConflict(err))

		merr := &multierror.Error{}
		require.True(t, errors.As(err, &merr))
		assert.Len(t, merr.Errors, 1)
	})
}

func TestDocumentsClient_Read(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, testPath("/_api/document/orders/4711"), request.URL.Path)
			assert.Equal(t, http.MethodGet, request.Method)

			writeJSON(writer, http.StatusOK, map[string]interface{}{
				"_id": "orders/4711", "_key": "4711", "_rev": "_a",
				"number": "ORD-1", "total": 99,
			})
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		var doc orderDoc

		meta, err := client.Documents().Read(context.Background(), "orders", "4711", &doc, nil)
		require.NoError(t, err)
		assert.Equal(t, "orders/4711", meta.ID)
		assert.Equal(t, "ORD-1", doc.Number)
		assert.Equal(t, 99, doc.Total)
	})

	t.Run("not modified with matching revision", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, `"_a"`, request.Header.Get("If-None-Match"))
			writer.WriteHeader(http.StatusNotModified)
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		_, err := client.Documents().Read(context.Background(), "orders", "4711", nil,
			&arango.DocumentOptions{IfNoneMatch: "_a"})
		require.ErrorIs(t, err, arango.ErrNotModified)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writeArangoError(writer, http.StatusNotFound, 1202, "document not found")
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		_, err := client.Documents().Read(context.Background(), "orders", "missing", nil, nil)
		require.Error(t, err)
		assert.True(t, arango.IsNotFound(err))
	})
}

func TestDocumentsClient_ReadHeader(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodHead, request.Method)
		writer.Header().Set("Etag", `"_cyim3ji---"`)
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	meta, err := client.Documents().ReadHeader(context.Background(), "orders", "4711", nil)
	require.NoError(t, err)
	assert.Equal(t, "orders/4711", meta.ID)
	assert.Equal(t, "_cyim3ji---", meta.Rev)
}

func TestDocumentsClient_Update(t *testing.T) {
	t.Parallel()

	t.Run("merge with keepNull false", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, testPath("/_api/document/orders/4711"), request.URL.Path)
			assert.Equal(t, http.MethodPatch, request.Method)
			assert.Equal(t, "false", request.URL.Query().Get("keepNull"))

			writeJSON(writer, http.StatusAccepted, map[string]interface{}{
				"_id": "orders/4711", "_key": "4711", "_rev": "_b", "_oldRev": "_a",
			})
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		meta, err := client.Documents().Update(context.Background(), "orders", "4711",
			map[string]interface{}{"total": 120},
			&arango.DocumentOptions{KeepNull: BoolPtr(false)},
		)
		require.NoError(t, err)
		assert.Equal(t, "_b", meta.Rev)
		assert.Equal(t, "_a", meta.OldRev)
	})

	t.Run("revision precondition fails", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, `"_stale"`, request.Header.Get("If-Match"))
			writeArangoError(writer, http.StatusPreconditionFailed, 1200, "conflict")
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		_, err := client.Documents().Update(context.Background(), "orders", "4711",
			map[string]interface{}{"total": 120},
			&arango.DocumentOptions{IfMatch: "_stale"},
		)
		require.Error(t, err)
		assert.True(t, arango.IsConflict(err))
	})
}

func TestDocumentsClient_Replace(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, testPath("/_api/document/orders/4711"), request.URL.Path)
		assert.Equal(t, http.MethodPut, request.Method)

		writeJSON(writer, http.StatusAccepted, map[string]interface{}{
			"_id": "orders/4711", "_key": "4711", "_rev": "_b",
		})
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	meta, err := client.Documents().Replace(context.Background(), "orders", "4711",
		&orderDoc{Number: "ORD-1", Total: 120}, nil)
	require.NoError(t, err)
	assert.Equal(t, "_b", meta.Rev)
}

func TestDocumentsClient_Delete(t *testing.T) {
	t.Parallel()

	t.Run("returns old document", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodDelete, request.Method)
			assert.Equal(t, "true", request.URL.Query().Get("returnOld"))

			writeJSON(writer, http.StatusOK, map[string]interface{}{
				"_id": "orders/4711", "_key": "4711", "_rev": "_a",
				"old": map[string]interface{}{"number": "ORD-1"},
			})
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		meta, err := client.Documents().Delete(context.Background(), "orders", "4711",
			&arango.DocumentOptions{ReturnOld: true})
		require.NoError(t, err)
		assert.NotEmpty(t, meta.Old)
	})

	t.Run("silent", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "true", request.URL.Query().Get("silent"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		meta, err := client.Documents().Delete(context.Background(), "orders", "4711",
			&arango.DocumentOptions{Silent: true})
		require.NoError(t, err)
		assert.Empty(t, meta.Key)
	})
}

func TestDocumentsClient_DeleteMany(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, testPath("/_api/document/orders"), request.URL.Path)
		assert.Equal(t, http.MethodDelete, request.Method)

		var keys []string

		require.NoError(t, json.NewDecoder(request.Body).Decode(&keys))
		assert.Equal(t, []string{"1", "2"}, keys)

		writeJSON(writer, http.StatusAccepted, []map[string]interface{}{
			{"_id": "orders/1", "_key": "1", "_rev": "_a"},
			{"error": true, "errorNum": 1202, "errorMessage": "document not found"},
		})
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	metas, err := client.Documents().DeleteMany(context.Background(), "orders", []string{"1", "2"}, nil)
	require.Error(t, err)
	require.Len(t, metas, 1)
	assert.True(t, arango.IsNotFound(err))
}

func TestDocumentsClient_EmptyArgumentsRejected(t *testing.T) {
	t.Parallel()

	client := NewTestClient("http://unreachable.invalid")

	_, err := client.Documents().Create(context.Background(), "", &orderDoc{}, nil)
	require.Error(t, err)

	_, err = client.Documents().Read(context.Background(), "orders", "", nil, nil)
	require.Error(t, err)

	_, err = client.Documents().Delete(context.Background(), "orders", "", nil)
	require.Error(t, err)
}
