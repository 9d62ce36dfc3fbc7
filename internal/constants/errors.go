package constants

import "errors"

// Configuration and target errors.
var (
	ErrNoEndpointsConfigured = errors.New("no endpoints configured, use 'arango target add' to add one")
	ErrEndpointNotFound      = errors.New("endpoint configuration not found")
	ErrNoCurrentEndpoint     = errors.New("no endpoint targeted, use 'arango target use' to select one")
	ErrInvalidJWTFormat      = errors.New("invalid JWT format")
	ErrNoExpirationClaim     = errors.New("no expiration claim found")
	ErrNotAuthenticated      = errors.New("not authenticated, run 'arango login' first")
)

// Validation errors.
var (
	ErrCollectionNameRequired = errors.New("collection name is required")
	ErrDatabaseNameRequired   = errors.New("database name is required")
	ErrDocumentKeyRequired    = errors.New("document key is required")
	ErrGraphNameRequired      = errors.New("graph name is required")
	ErrIndexHandleRequired    = errors.New("index handle is required")
	ErrJobIDRequired          = errors.New("job id is required")
	ErrInvalidBindVar         = errors.New("invalid bind variable, expected key=value")
)

// Operation errors.
var (
	ErrJobNotFound   = errors.New("job not found or already fetched")
	ErrJobNotDone    = errors.New("job has not completed yet")
	ErrNoAsyncJobID  = errors.New("server response carried no async job id")
	ErrUnknownOutput = errors.New("unknown output format")
)
