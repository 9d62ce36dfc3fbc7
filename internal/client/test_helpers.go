package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/arango/internal/constants"
	internalhttp "github.com/fivetwenty-io/arango/internal/http"
)

// NewTestClient creates a client against a test server, with no credentials.
func NewTestClient(baseURL string) *Client {
	httpClient := internalhttp.NewClient(baseURL, nil)

	client := &Client{
		httpClient: httpClient,
		endpoint:   baseURL,
		database:   constants.DefaultDatabase,
	}

	client.initializeResourceClients()

	return client
}

// testPath scopes an API path to the default test database, mirroring what
// the clients under test compute.
func testPath(path string) string {
	return databasePath(constants.DefaultDatabase, path)
}

// writeJSON encodes a response body with the given status.
func writeJSON(writer http.ResponseWriter, statusCode int, body interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)

	if body != nil {
		_ = json.NewEncoder(writer).Encode(body)
	}
}

// writeArangoError encodes a server error envelope.
func writeArangoError(writer http.ResponseWriter, statusCode, errorNum int, message string) {
	writeJSON(writer, statusCode, map[string]interface{}{
		"error":        true,
		"code":         statusCode,
		"errorNum":     errorNum,
		"errorMessage": message,
	})
}

// TestGetOperation represents a generic get operation test case.
type TestGetOperation[TResponse any] struct {
	Name         string
	Target       string
	ExpectedPath string
	StatusCode   int
	Response     interface{}
	WantErr      bool
	ErrMessage   string
}

// RunGetTests runs a series of get operation tests.
func RunGetTests[TResponse any](
	t *testing.T,
	tests []TestGetOperation[TResponse],
	getFunc func(*Client) func(context.Context, string) (*TResponse, error),
) {
	t.Helper()

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.ExpectedPath, request.URL.Path)
				assert.Equal(t, http.MethodGet, request.Method)
				writeJSON(writer, testCase.StatusCode, testCase.Response)
			}))
			defer server.Close()

			getFn := getFunc(NewTestClient(server.URL))
			result, err := getFn(context.Background(), testCase.Target)

			if testCase.WantErr {
				require.Error(t, err)

				if testCase.ErrMessage != "" {
					assert.Contains(t, err.Error(), testCase.ErrMessage)
				}

				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
			}
		})
	}
}

// TestCreateOperation represents a generic create operation test case.
type TestCreateOperation[TRequest, TResponse any] struct {
	Name         string
	Request      *TRequest
	ExpectedPath string
	StatusCode   int
	Response     interface{}
	WantErr      bool
	ErrMessage   string
}

// RunCreateTests runs a series of create operation tests.
func RunCreateTests[TRequest, TResponse any](
	t *testing.T,
	tests []TestCreateOperation[TRequest, TResponse],
	createFunc func(*Client) func(context.Context, *TRequest) (*TResponse, error),
) {
	t.Helper()

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.ExpectedPath, request.URL.Path)
				assert.Equal(t, http.MethodPost, request.Method)

				var requestBody TRequest

				err := json.NewDecoder(request.Body).Decode(&requestBody)
				assert.NoError(t, err)

				writeJSON(writer, testCase.StatusCode, testCase.Response)
			}))
			defer server.Close()

			createFn := createFunc(NewTestClient(server.URL))
			result, err := createFn(context.Background(), testCase.Request)

			if testCase.WantErr {
				require.Error(t, err)

				if testCase.ErrMessage != "" {
					assert.Contains(t, err.Error(), testCase.ErrMessage)
				}

				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
			}
		})
	}
}

// TestDeleteOperation represents a generic delete operation test case.
type TestDeleteOperation struct {
	Name         string
	Target       string
	ExpectedPath string
	StatusCode   int
	Response     interface{}
	WantErr      bool
	ErrMessage   string
}

// RunDeleteTests runs a series of delete operation tests.
func RunDeleteTests(
	t *testing.T,
	tests []TestDeleteOperation,
	deleteFunc func(*Client) func(context.Context, string) error,
) {
	t.Helper()

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.ExpectedPath, request.URL.Path)
				assert.Equal(t, http.MethodDelete, request.Method)
				writeJSON(writer, testCase.StatusCode, testCase.Response)
			}))
			defer server.Close()

			deleteFn := deleteFunc(NewTestClient(server.URL))
			err := deleteFn(context.Background(), testCase.Target)

			if testCase.WantErr {
				require.Error(t, err)

				if testCase.ErrMessage != "" {
					assert.Contains(t, err.Error(), testCase.ErrMessage)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// BoolPtr is a helper that returns a pointer to the given bool.
func BoolPtr(value bool) *bool {
	return &value
}
