package arango

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/arango/internal/constants"
)

// ArangoError represents a domain error reported by the server through the
// response envelope. ErrorNum is the authoritative discriminator; the HTTP
// code is carried alongside for context.
type ArangoError struct {
	Code     int    `json:"code"         yaml:"code"`
	ErrorNum int    `json:"errorNum"     yaml:"errorNum"`
	Message  string `json:"errorMessage" yaml:"errorMessage"`
}

// Error implements the error interface.
func (e *ArangoError) Error() string {
	return fmt.Sprintf("%s (code: %d, errorNum: %d)", e.Message, e.Code, e.ErrorNum)
}

// AuthErrorKind classifies why token issuance failed or was not attempted.
type AuthErrorKind string

const (
	// AuthRejected means the server refused the supplied credentials.
	AuthRejected AuthErrorKind = "rejected"
	// AuthUnreachable means the issuance endpoint could not be reached.
	AuthUnreachable AuthErrorKind = "unreachable"
	// AuthNotRenewable means the client holds a pre-issued token and no
	// username/password to obtain a fresh one.
	AuthNotRenewable AuthErrorKind = "not renewable"
)

// AuthenticationError represents a failed or impossible credential renewal.
type AuthenticationError struct {
	Kind AuthErrorKind
	Err  error
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication %s: %v", e.Kind, e.Err)
	}

	return "authentication " + string(e.Kind)
}

// Unwrap exposes the underlying cause.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// NetworkError represents a connection, DNS, or timeout failure. The client
// never retries these; they surface to the caller immediately.
type NetworkError struct {
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

// Unwrap exposes the underlying cause.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError represents a response body that did not match the expected
// payload shape. It indicates a protocol or version mismatch and is fatal to
// the current call; it is never conflated with a server-reported ArangoError.
type DecodeError struct {
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return "decoding response: " + e.Err.Error()
}

// Unwrap exposes the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// CursorExpiredError reports that a fetch-next or delete targeted a cursor
// the server no longer recognizes. It terminates the result sequence
// abnormally, distinguishable from normal exhaustion.
type CursorExpiredError struct {
	ErrorNum int
	Message  string
}

// Error implements the error interface.
func (e *CursorExpiredError) Error() string {
	return fmt.Sprintf("cursor expired: %s (errorNum: %d)", e.Message, e.ErrorNum)
}

// Server error numbers re-exported for callers branching on ErrorNum.
const (
	ErrNumForbidden          = constants.ErrArangoForbidden
	ErrNumConflict           = constants.ErrArangoConflict
	ErrNumDocumentNotFound   = constants.ErrArangoDocumentNotFound
	ErrNumDataSourceNotFound = constants.ErrArangoDataSourceNotFound
	ErrNumDuplicateName      = constants.ErrArangoDuplicateName
	ErrNumUniqueConstraint   = constants.ErrArangoUniqueConstraint
	ErrNumDatabaseNotFound   = constants.ErrArangoDatabaseNotFound
	ErrNumQueryParse         = constants.ErrQueryParse
	ErrNumCursorNotFound     = constants.ErrCursorNotFound
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired        = errors.New("config is required")
	ErrEndpointRequired      = errors.New("endpoint is required")
	ErrNotModified           = errors.New("document not modified")
	ErrCursorBusy            = errors.New("cursor fetch already in flight")
	ErrCursorClosed          = errors.New("cursor is closed")
	ErrNoDocumentsProvided   = errors.New("no documents provided")
	ErrSkipTLSOnlyInDev      = errors.New("skipTLS is only allowed in development environments")
	ErrAsyncJobIDMissing     = errors.New("response carried no async job id")
)

// IsNotFound reports whether err is a server "not found" condition, covering
// documents, data sources, and databases.
func IsNotFound(err error) bool {
	arangoErr := &ArangoError{}
	if errors.As(err, &arangoErr) {
		switch arangoErr.ErrorNum {
		case ErrNumDocumentNotFound, ErrNumDataSourceNotFound, ErrNumDatabaseNotFound:
			return true
		}
	}

	return false
}

// IsUnauthorized reports whether err represents rejected credentials.
func IsUnauthorized(err error) bool {
	authErr := &AuthenticationError{}
	if errors.As(err, &authErr) {
		return authErr.Kind == AuthRejected
	}

	arangoErr := &ArangoError{}
	if errors.As(err, &arangoErr) {
		return arangoErr.Code == 401
	}

	return false
}

// IsForbidden reports whether err is the server's permission-denied error.
func IsForbidden(err error) bool {
	arangoErr := &ArangoError{}
	if errors.As(err, &arangoErr) {
		return arangoErr.ErrorNum == ErrNumForbidden
	}

	return false
}

// IsConflict reports whether err is a write-write conflict, a unique
// constraint violation, or a duplicate name.
func IsConflict(err error) bool {
	arangoErr := &ArangoError{}
	if errors.As(err, &arangoErr) {
		switch arangoErr.ErrorNum {
		case ErrNumConflict, ErrNumUniqueConstraint, ErrNumDuplicateName:
			return true
		}
	}

	return false
}

// IsCursorExpired reports whether err terminated a cursor sequence because
// the server-side cursor no longer exists.
func IsCursorExpired(err error) bool {
	expired := &CursorExpiredError{}

	return errors.As(err, &expired)
}

// envelope is the uniform wrapper around every server response. Payload
// fields are decoded in a second pass only when Error is false.
type envelope struct {
	Error        bool   `json:"error"`
	Code         int    `json:"code"`
	ErrorNum     int    `json:"errorNum"`
	ErrorMessage string `json:"errorMessage"`
}

// ParseArangoError parses an error envelope from a response body. When the
// body is not a well-formed envelope, the HTTP status alone shapes the error.
func ParseArangoError(statusCode int, data []byte) *ArangoError {
	var env envelope

	err := json.Unmarshal(data, &env)
	if err != nil || (!env.Error && env.ErrorNum == 0) {
		return &ArangoError{Code: statusCode, Message: string(data)}
	}

	code := env.Code
	if code == 0 {
		code = statusCode
	}

	return &ArangoError{Code: code, ErrorNum: env.ErrorNum, Message: env.ErrorMessage}
}

// DecodePayload splits the envelope from the payload. An envelope with
// error == true yields an *ArangoError regardless of payload shape; otherwise
// the full body is deserialized into v, and a structural mismatch yields a
// *DecodeError.
func DecodePayload(statusCode int, data []byte, v interface{}) error {
	var env envelope

	err := json.Unmarshal(data, &env)
	if err != nil {
		return &DecodeError{Err: err}
	}

	if env.Error {
		code := env.Code
		if code == 0 {
			code = statusCode
		}

		return &ArangoError{Code: code, ErrorNum: env.ErrorNum, Message: env.ErrorMessage}
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return &DecodeError{Err: err}
	}

	return nil
}
