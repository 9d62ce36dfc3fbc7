package arango

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// QueryRequest is the body of POST /_api/cursor. The query text is opaque to
// the client and sent as-is; bind variables are substituted by the server.
// A request is immutable once submitted: batch size and options are fixed at
// create time and never renegotiated mid-stream.
type QueryRequest struct {
	Query       string                 `json:"query"                 yaml:"query"`
	BindVars    map[string]interface{} `json:"bindVars,omitempty"    yaml:"bindVars,omitempty"`
	Count       bool                   `json:"count,omitempty"       yaml:"count,omitempty"`
	BatchSize   int                    `json:"batchSize,omitempty"   yaml:"batchSize,omitempty"`
	Cache       *bool                  `json:"cache,omitempty"       yaml:"cache,omitempty"`
	MemoryLimit int64                  `json:"memoryLimit,omitempty" yaml:"memoryLimit,omitempty"`

	// TTL is the server-side cursor idle lifetime in seconds. Left unset,
	// the server applies its own default.
	TTL int `json:"ttl,omitempty" yaml:"ttl,omitempty"`

	Options *QueryOptions `json:"options,omitempty" yaml:"options,omitempty"`
}

// ProfileKind selects the detail level of query profiling.
type ProfileKind int

const (
	// ProfileBasic reports per-phase timings.
	ProfileBasic ProfileKind = 1
	// ProfileWithPlan additionally reports plan and per-node statistics.
	ProfileWithPlan ProfileKind = 2
)

// QueryOptions are the per-query execution options nested under "options".
type QueryOptions struct {
	FullCount               bool         `json:"fullCount,omitempty"               yaml:"fullCount,omitempty"`
	Profile                 ProfileKind  `json:"profile,omitempty"                 yaml:"profile,omitempty"`
	Stream                  bool         `json:"stream,omitempty"                  yaml:"stream,omitempty"`
	FailOnWarning           *bool        `json:"failOnWarning,omitempty"           yaml:"failOnWarning,omitempty"`
	MaxRuntime              float64      `json:"maxRuntime,omitempty"              yaml:"maxRuntime,omitempty"`
	MaxWarningCount         int          `json:"maxWarningCount,omitempty"         yaml:"maxWarningCount,omitempty"`
	MaxPlans                int          `json:"maxPlans,omitempty"                yaml:"maxPlans,omitempty"`
	MaxTransactionSize      int64        `json:"maxTransactionSize,omitempty"      yaml:"maxTransactionSize,omitempty"`
	IntermediateCommitCount int64        `json:"intermediateCommitCount,omitempty" yaml:"intermediateCommitCount,omitempty"`
	IntermediateCommitSize  int64        `json:"intermediateCommitSize,omitempty"  yaml:"intermediateCommitSize,omitempty"`
	Optimizer               *OptimizerRules `json:"optimizer,omitempty"            yaml:"optimizer,omitempty"`
}

// OptimizerRules names optimizer rules to enable or disable, each prefixed
// with "+" or "-" by the caller.
type OptimizerRules struct {
	Rules []string `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// NewQueryRequest creates a request for the given query text.
func NewQueryRequest(query string) *QueryRequest {
	return &QueryRequest{Query: query}
}

// WithBindVar adds a bind variable, allocating the map on first use.
func (r *QueryRequest) WithBindVar(name string, value interface{}) *QueryRequest {
	if r.BindVars == nil {
		r.BindVars = make(map[string]interface{})
	}

	r.BindVars[name] = value

	return r
}

// WithBatchSize sets the page size for every batch of the cursor.
func (r *QueryRequest) WithBatchSize(size int) *QueryRequest {
	r.BatchSize = size

	return r
}

// WithCount requests the total result count alongside the first batch.
func (r *QueryRequest) WithCount() *QueryRequest {
	r.Count = true

	return r
}

// WithTTL sets the server-side cursor idle lifetime in seconds.
func (r *QueryRequest) WithTTL(seconds int) *QueryRequest {
	r.TTL = seconds

	return r
}

// WithProfile requests query profiling at the given detail level. The
// per-phase timings arrive under extra.profile of the first batch.
func (r *QueryRequest) WithProfile(kind ProfileKind) *QueryRequest {
	if r.Options == nil {
		r.Options = &QueryOptions{}
	}

	r.Options.Profile = kind

	return r
}

// Validate checks the request before submission. The server would reject a
// zero batch size anyway; catching it client-side keeps the error typed.
func (r *QueryRequest) Validate() error {
	//nolint:wrapcheck // validation.Errors is the caller-facing type
	return validation.ValidateStruct(r,
		validation.Field(&r.Query, validation.Required),
		validation.Field(&r.BatchSize, validation.Min(0)),
		validation.Field(&r.TTL, validation.Min(0)),
		validation.Field(&r.MemoryLimit, validation.Min(int64(0))),
	)
}
