package arangoclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/arango/pkg/arango"
	"github.com/fivetwenty-io/arango/pkg/arangoclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("creates client with config", func(t *testing.T) {
		t.Parallel()

		config := &arango.Config{
			Endpoint: "http://localhost:8529",
		}

		client, err := arangoclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		client, err := arangoclient.New(context.Background(), nil)
		require.ErrorIs(t, err, arango.ErrConfigRequired)
		assert.Nil(t, client)
	})

	t.Run("requires endpoint", func(t *testing.T) {
		t.Parallel()

		client, err := arangoclient.New(context.Background(), &arango.Config{})
		require.ErrorIs(t, err, arango.ErrEndpointRequired)
		assert.Nil(t, client)
	})

	t.Run("normalizes endpoint", func(t *testing.T) {
		t.Parallel()

		config := &arango.Config{Endpoint: "localhost:8529/"}

		_, err := arangoclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8529", config.Endpoint)
	})

	t.Run("keeps https scheme", func(t *testing.T) {
		t.Parallel()

		config := &arango.Config{Endpoint: "https://db.example.com:8529"}

		_, err := arangoclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.Equal(t, "https://db.example.com:8529", config.Endpoint)
	})

}

// t.Setenv is incompatible with t.Parallel, so the dev-mode gate gets its
// own sequential test.
func TestNew_SkipTLSVerifyGate(t *testing.T) {
	t.Run("rejected outside development", func(t *testing.T) {
		t.Setenv("ARANGO_DEV_MODE", "")

		config := &arango.Config{
			Endpoint:      "https://db.example.com:8529",
			SkipTLSVerify: true,
		}

		client, err := arangoclient.New(context.Background(), config)
		require.ErrorIs(t, err, arango.ErrSkipTLSOnlyInDev)
		assert.Nil(t, client)
	})

	t.Run("allowed in development", func(t *testing.T) {
		t.Setenv("ARANGO_DEV_MODE", "true")

		config := &arango.Config{
			Endpoint:      "https://db.example.com:8529",
			SkipTLSVerify: true,
		}

		client, err := arangoclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestNewWithEndpoint(t *testing.T) {
	t.Parallel()

	client, err := arangoclient.NewWithEndpoint(context.Background(), "http://localhost:8529")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	client, err := arangoclient.NewWithToken(context.Background(), "http://localhost:8529", "test-token")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithPassword(t *testing.T) {
	t.Parallel()

	client, err := arangoclient.NewWithPassword(context.Background(), "http://localhost:8529", "root", "secret")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithDatabase(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/_db/orders/_api/database/current", request.URL.Path)
		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(map[string]interface{}{
			"error": false,
			"code":  200,
			"result": map[string]interface{}{
				"name":     "orders",
				"id":       "123",
				"isSystem": false,
			},
		})
	}))
	defer server.Close()

	client, err := arangoclient.NewWithDatabase(context.Background(), server.URL, "orders")
	require.NoError(t, err)

	info, err := client.Databases().Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "orders", info.Name)
}
