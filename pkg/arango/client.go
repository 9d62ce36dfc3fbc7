package arango

import (
	"context"
	"net/http"
	"time"
)

// DatabasesClient manages databases. List is only permitted against the
// _system database.
type DatabasesClient interface {
	Current(ctx context.Context) (*DatabaseInfo, error)
	User(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]string, error)
	Create(ctx context.Context, request *DatabaseCreateRequest) error
	Drop(ctx context.Context, name string) error
}

// CollectionsClient manages collections within the connection's database.
type CollectionsClient interface {
	List(ctx context.Context, excludeSystem bool) ([]Collection, error)
	Get(ctx context.Context, name string) (*Collection, error)
	Create(ctx context.Context, request *CollectionCreateRequest) (*CollectionProperties, error)
	Drop(ctx context.Context, name string) error
	Truncate(ctx context.Context, name string) (*Collection, error)
	Rename(ctx context.Context, name, newName string) (*Collection, error)
	Properties(ctx context.Context, name string) (*CollectionProperties, error)
	SetProperties(ctx context.Context, name string, update *CollectionPropertiesUpdate) (*CollectionProperties, error)
	Count(ctx context.Context, name string) (int64, error)
	Figures(ctx context.Context, name string) (*CollectionFigures, error)
	Revision(ctx context.Context, name string) (string, error)
	Checksum(ctx context.Context, name string, withRevisions, withData bool) (string, error)
	Load(ctx context.Context, name string) (*Collection, error)
	Unload(ctx context.Context, name string) (*Collection, error)
	RecalculateCount(ctx context.Context, name string) error
	LoadIndexesIntoMemory(ctx context.Context, name string) error
}

// DocumentsClient performs document CRUD against named collections.
type DocumentsClient interface {
	Create(ctx context.Context, collection string, document interface{}, opts *DocumentOptions) (*DocumentMeta, error)
	CreateMany(ctx context.Context, collection string, documents []interface{}, opts *DocumentOptions) ([]DocumentMeta, error)
	Read(ctx context.Context, collection, key string, document interface{}, opts *DocumentOptions) (*DocumentMeta, error)
	ReadHeader(ctx context.Context, collection, key string, opts *DocumentOptions) (*DocumentMeta, error)
	Update(ctx context.Context, collection, key string, patch interface{}, opts *DocumentOptions) (*DocumentMeta, error)
	UpdateMany(ctx context.Context, collection string, patches []interface{}, opts *DocumentOptions) ([]DocumentMeta, error)
	Replace(ctx context.Context, collection, key string, document interface{}, opts *DocumentOptions) (*DocumentMeta, error)
	ReplaceMany(ctx context.Context, collection string, documents []interface{}, opts *DocumentOptions) ([]DocumentMeta, error)
	Delete(ctx context.Context, collection, key string, opts *DocumentOptions) (*DocumentMeta, error)
	DeleteMany(ctx context.Context, collection string, keys []string, opts *DocumentOptions) ([]DocumentMeta, error)
}

// GraphsClient manages named graphs.
type GraphsClient interface {
	List(ctx context.Context) ([]Graph, error)
	Get(ctx context.Context, name string) (*Graph, error)
	Create(ctx context.Context, request *GraphCreateRequest) (*Graph, error)
	Drop(ctx context.Context, name string, dropCollections bool) error
}

// IndexesClient manages indexes. Handles have the form "collection/number".
type IndexesClient interface {
	List(ctx context.Context, collection string) ([]Index, error)
	Get(ctx context.Context, handle string) (*Index, error)
	Create(ctx context.Context, collection string, request *IndexCreateRequest) (*Index, error)
	Delete(ctx context.Context, handle string) error
}

// JobsClient drives the async job API for requests submitted with the
// x-arango-async: store header.
type JobsClient interface {
	Status(ctx context.Context, id string) (JobStatus, error)
	List(ctx context.Context, kind JobKind) ([]string, error)
	Cancel(ctx context.Context, id string) error
	Delete(ctx context.Context, target string) error
	Wait(ctx context.Context, id string) error
}

// QueryClient executes AQL queries through the cursor protocol.
type QueryClient interface {
	// Execute creates a cursor and returns the lazy document sequence.
	Execute(ctx context.Context, request *QueryRequest) (*Cursor, error)
	// ExecuteAsync submits the query for stored async execution and
	// returns the job id.
	ExecuteAsync(ctx context.Context, request *QueryRequest) (string, error)
	// AsyncResult fetches a completed async query and builds its cursor.
	AsyncResult(ctx context.Context, jobID string) (*Cursor, error)
}

// Client is the typed surface over one server connection. All clients share
// one transport handle and one credential cell; every operation may run
// concurrently except iteration of a single Cursor.
type Client interface {
	Databases() DatabasesClient
	Collections() CollectionsClient
	Documents() DocumentsClient
	Graphs() GraphsClient
	Indexes() IndexesClient
	Jobs() JobsClient
	Query() QueryClient

	// Database returns the database this client is scoped to.
	Database() string
	// Version reports the server version from GET /_api/version.
	Version(ctx context.Context) (*VersionInfo, error)
}

// VersionInfo is the response of GET /_api/version.
type VersionInfo struct {
	Server  string `json:"server"  yaml:"server"`
	License string `json:"license" yaml:"license"`
	Version string `json:"version" yaml:"version"`
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}

// NoopLogger returns a logger that discards everything.
func NoopLogger() Logger {
	return noopLogger{}
}

// Config represents client configuration for building an arango.Client.
//
// # Authentication precedence
//
// The following precedence is applied by the concrete client implementation
// (see pkg/arangoclient and internal/client):
//  1. Token: if set, it is used directly as a static Bearer token. Static
//     tokens cannot be renewed; a 401 surfaces immediately.
//  2. Token + Username/Password: the token is tried first; when it expires
//     or fails with 401, the client obtains a fresh JWT from /_open/auth.
//  3. Username/Password: a JWT is obtained from /_open/auth on first use and
//     renewed transparently. At most one renewal is attempted per request,
//     and concurrent renewals coalesce into a single issuance call.
//  4. UseBasicAuth with Username/Password: HTTP basic auth on every request,
//     no token lifecycle.
//  5. No credentials: requests are sent without authentication.
//
// # Timeouts and TLS
//
// Per-request timeouts should be controlled via the context passed to client
// methods. CursorCloseTimeout bounds only the best-effort cursor delete sent
// when iteration is abandoned. SkipTLSVerify is honored only when the
// environment variable ARANGO_DEV_MODE is set to "true" or "1"; do not use it
// in production.
type Config struct {
	// Endpoint: base URL of the server (e.g. "https://db.example.com:8529").
	// arangoclient.New normalizes this value by trimming a trailing slash
	// and adding "http://" if no scheme is present.
	Endpoint string

	// Database scopes every database-level operation. Defaults to _system.
	Database string

	// Username for JWT issuance or basic auth.
	Username string
	// Password for JWT issuance or basic auth.
	Password string
	// Token: pre-issued JWT used directly as a Bearer token.
	Token string
	// UseBasicAuth sends HTTP basic auth per request instead of a JWT.
	UseBasicAuth bool

	// HTTPTimeout: default timeout of the underlying HTTP client. Ignored
	// when HTTPClient is supplied.
	HTTPTimeout time.Duration
	// HTTPClient: optional pre-built HTTP client, e.g. one produced by
	// retryablehttp for caller-level retry policies. The core transport
	// itself never retries beyond the single 401 renewal.
	HTTPClient *http.Client
	// CursorCloseTimeout bounds best-effort cursor deletes on abandoned
	// iteration. Defaults to 5 seconds.
	CursorCloseTimeout time.Duration

	// Interceptors hook every outgoing request and incoming response, in
	// registration order. Assemble a chain with NewInterceptorChain and the
	// built-in interceptors (request ids, async mode, rate limiting) or
	// custom funcs.
	Interceptors *InterceptorChain

	// Debug enables verbose HTTP request/response logging when a Logger is
	// provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and cursor.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// SkipTLSVerify disables TLS verification; only honored when
	// ARANGO_DEV_MODE is set.
	SkipTLSVerify bool
}
