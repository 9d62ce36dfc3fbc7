package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/arango/internal/auth"
	"github.com/fivetwenty-io/arango/internal/client"
	"github.com/fivetwenty-io/arango/pkg/arango"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := client.New(context.Background(), &arango.Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "endpoint is required")
	})

	t.Run("defaults to the system database", func(t *testing.T) {
		t.Parallel()

		c, err := client.New(context.Background(), &arango.Config{Endpoint: "http://localhost:8529"})
		require.NoError(t, err)
		assert.Equal(t, "_system", c.Database())
	})

	t.Run("scopes to the configured database", func(t *testing.T) {
		t.Parallel()

		c, err := client.New(context.Background(), &arango.Config{
			Endpoint: "http://localhost:8529",
			Database: "orders",
		})
		require.NoError(t, err)
		assert.Equal(t, "orders", c.Database())
	})

	t.Run("static token is not renewable", func(t *testing.T) {
		t.Parallel()

		c, err := client.New(context.Background(), &arango.Config{
			Endpoint: "http://localhost:8529",
			Token:    "some-jwt",
		})
		require.NoError(t, err)

		manager := c.GetTokenManager()
		require.NotNil(t, manager)
		assert.False(t, manager.Renewable())
	})

	t.Run("password credentials are renewable", func(t *testing.T) {
		t.Parallel()

		c, err := client.New(context.Background(), &arango.Config{
			Endpoint: "http://localhost:8529",
			Username: "root",
			Password: "secret",
		})
		require.NoError(t, err)

		manager := c.GetTokenManager()
		require.NotNil(t, manager)
		assert.True(t, manager.Renewable())
	})

	t.Run("token plus credentials falls back to renewal", func(t *testing.T) {
		t.Parallel()

		c, err := client.New(context.Background(), &arango.Config{
			Endpoint: "http://localhost:8529",
			Token:    "initial-jwt",
			Username: "root",
			Password: "secret",
		})
		require.NoError(t, err)

		manager := c.GetTokenManager()
		require.NotNil(t, manager)
		assert.True(t, manager.Renewable())

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "initial-jwt", token)
	})

	t.Run("basic auth uses no token manager", func(t *testing.T) {
		t.Parallel()

		c, err := client.New(context.Background(), &arango.Config{
			Endpoint:     "http://localhost:8529",
			Username:     "root",
			Password:     "secret",
			UseBasicAuth: true,
		})
		require.NoError(t, err)
		assert.Nil(t, c.GetTokenManager())
	})
}

func TestNewWithTokenManager(t *testing.T) {
	t.Parallel()

	t.Run("requires endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := client.NewWithTokenManager(&arango.Config{}, auth.NewStaticTokenManager("jwt"))
		require.Error(t, err)
	})

	t.Run("uses the supplied manager", func(t *testing.T) {
		t.Parallel()

		manager := auth.NewStaticTokenManager("jwt")

		c, err := client.NewWithTokenManager(&arango.Config{Endpoint: "http://localhost:8529"}, manager)
		require.NoError(t, err)
		assert.Same(t, auth.TokenManager(manager), c.GetTokenManager())
	})
}

func TestClient_ConfiguredInterceptorsFire(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "tagged", request.Header.Get("X-Request-Tag"))

		writeJSONResponse(writer, http.StatusOK, map[string]interface{}{
			"server":  "arango",
			"license": "community",
			"version": "3.11.4",
		})
	}))
	defer server.Close()

	var responsesSeen int

	chain := arango.NewInterceptorChain()
	chain.AddRequestInterceptor(func(_ context.Context, req *arango.Request) error {
		req.Headers.Set("X-Request-Tag", "tagged")

		return nil
	})
	chain.AddResponseInterceptor(func(_ context.Context, _ *arango.Request, _ *arango.Response) error {
		responsesSeen++

		return nil
	})

	c, err := client.New(context.Background(), &arango.Config{
		Endpoint:     server.URL,
		Interceptors: chain,
	})
	require.NoError(t, err)

	_, err = c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, responsesSeen)
}

func TestClient_Version(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/_db/_system/_api/version", request.URL.Path)

		writeJSONResponse(writer, http.StatusOK, map[string]interface{}{
			"server":  "arango",
			"license": "community",
			"version": "3.11.4",
		})
	}))
	defer server.Close()

	c := client.NewTestClient(server.URL)

	info, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "arango", info.Server)
	assert.Equal(t, "3.11.4", info.Version)
}

func TestClient_ResourceClientsShareScope(t *testing.T) {
	t.Parallel()

	c := client.NewTestClient("http://localhost:8529")

	assert.NotNil(t, c.Databases())
	assert.NotNil(t, c.Collections())
	assert.NotNil(t, c.Documents())
	assert.NotNil(t, c.Graphs())
	assert.NotNil(t, c.Indexes())
	assert.NotNil(t, c.Jobs())
	assert.NotNil(t, c.Query())
}
