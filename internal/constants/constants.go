package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as token issuance.
	ShortHTTPTimeout = 10 * time.Second

	// DefaultCursorCloseTimeout bounds the best-effort cursor delete sent
	// when a consumer abandons iteration.
	DefaultCursorCloseTimeout = 5 * time.Second
)

// Token lifecycle.
const (
	// TokenExpiryBuffer is subtracted from a token's expiry when deciding
	// whether it is still usable, so requests never race the deadline.
	TokenExpiryBuffer = 30 * time.Second
)

// Job polling.
const (
	// DefaultJobPollInitialInterval is the starting backoff interval when
	// waiting for an async job to complete.
	DefaultJobPollInitialInterval = 250 * time.Millisecond

	// DefaultJobPollMaxInterval caps the backoff between job status polls.
	DefaultJobPollMaxInterval = 5 * time.Second

	// DefaultJobPollTimeout is the overall deadline for Jobs().Wait.
	DefaultJobPollTimeout = 5 * time.Minute
)

// API path prefixes.
const (
	// AuthPath is the token issuance endpoint. It is never database-scoped.
	AuthPath = "/_open/auth"

	// CursorPath is the query cursor endpoint, relative to the database.
	CursorPath = "/_api/cursor"

	// DatabasePath is the database management endpoint.
	DatabasePath = "/_api/database"

	// CollectionPath is the collection management endpoint.
	CollectionPath = "/_api/collection"

	// DocumentPath is the document CRUD endpoint.
	DocumentPath = "/_api/document"

	// GraphPath is the named graph (gharial) endpoint.
	GraphPath = "/_api/gharial"

	// IndexPath is the index management endpoint.
	IndexPath = "/_api/index"

	// JobPath is the async job endpoint.
	JobPath = "/_api/job"
)

// Request and response headers.
const (
	// HeaderAsync requests asynchronous execution ("true" fire-and-forget,
	// "store" to keep the result for later retrieval).
	HeaderAsync = "x-arango-async"

	// HeaderAsyncID carries the job id of a stored async submission.
	HeaderAsyncID = "x-arango-async-id"

	// HeaderIfMatch is the revision precondition header.
	HeaderIfMatch = "If-Match"

	// HeaderIfNoneMatch is the negative revision precondition header.
	HeaderIfNoneMatch = "If-None-Match"
)

// Async execution modes for HeaderAsync.
const (
	AsyncFireAndForget = "true"
	AsyncStore         = "store"
)

// Defaults applied by the client facade.
const (
	// DefaultDatabase is used when the configuration names no database.
	DefaultDatabase = "_system"

	// DefaultUsername is the server's root account.
	DefaultUsername = "root"
)

// Server error numbers (the errorNum envelope field). These are the codes
// the client branches on; the full catalogue lives in the server.
const (
	ErrArangoForbidden         = 11
	ErrArangoConflict          = 1200
	ErrArangoDocumentNotFound  = 1202
	ErrArangoDataSourceNotFound = 1203
	ErrArangoDuplicateName     = 1207
	ErrArangoUniqueConstraint  = 1210
	ErrArangoDatabaseNotFound  = 1228
	ErrQueryParse              = 1501
	ErrCursorNotFound          = 1600
)

// Async job states as reported by GET /_api/job/{id}.
const (
	JobStatePending = "pending"
	JobStateDone    = "done"
)
