package arango

import "encoding/json"

// DatabaseInfo describes a database as reported by /_api/database/current.
type DatabaseInfo struct {
	Name     string `json:"name"     yaml:"name"`
	ID       string `json:"id"       yaml:"id"`
	Path     string `json:"path"     yaml:"path"`
	IsSystem bool   `json:"isSystem" yaml:"isSystem"`
}

// DatabaseUser is an initial user granted access to a new database.
type DatabaseUser struct {
	Username string                 `json:"username"          yaml:"username"`
	Password string                 `json:"passwd,omitempty"  yaml:"passwd,omitempty"`
	Active   bool                   `json:"active"            yaml:"active"`
	Extra    map[string]interface{} `json:"extra,omitempty"   yaml:"extra,omitempty"`
}

// DatabaseCreateRequest is the body of POST /_api/database.
type DatabaseCreateRequest struct {
	Name    string                 `json:"name"              yaml:"name"`
	Users   []DatabaseUser         `json:"users,omitempty"   yaml:"users,omitempty"`
	Options map[string]interface{} `json:"options,omitempty" yaml:"options,omitempty"`
}

// CollectionType distinguishes document and edge collections.
type CollectionType int

const (
	// CollectionDocument is a regular document collection.
	CollectionDocument CollectionType = 2
	// CollectionEdge stores edges for graph traversal.
	CollectionEdge CollectionType = 3
)

// CollectionStatus is the server-reported lifecycle state of a collection.
type CollectionStatus int

const (
	CollectionStatusUnloaded CollectionStatus = 2
	CollectionStatusLoaded   CollectionStatus = 3
	CollectionStatusDeleted  CollectionStatus = 5
)

// Collection describes a collection as returned by the collection API.
type Collection struct {
	ID       string           `json:"id"       yaml:"id"`
	Name     string           `json:"name"     yaml:"name"`
	Status   CollectionStatus `json:"status"   yaml:"status"`
	Type     CollectionType   `json:"type"     yaml:"type"`
	IsSystem bool             `json:"isSystem" yaml:"isSystem"`

	GloballyUniqueID string `json:"globallyUniqueId,omitempty" yaml:"globallyUniqueId,omitempty"`
}

// CollectionProperties extends Collection with the mutable property set.
type CollectionProperties struct {
	Collection `yaml:",inline"`

	WaitForSync    bool                   `json:"waitForSync"              yaml:"waitForSync"`
	Schema         map[string]interface{} `json:"schema,omitempty"         yaml:"schema,omitempty"`
	KeyOptions     *CollectionKeyOptions  `json:"keyOptions,omitempty"     yaml:"keyOptions,omitempty"`
	CacheEnabled   bool                   `json:"cacheEnabled,omitempty"   yaml:"cacheEnabled,omitempty"`
	WriteConcern   int                    `json:"writeConcern,omitempty"   yaml:"writeConcern,omitempty"`
	NumberOfShards int                    `json:"numberOfShards,omitempty" yaml:"numberOfShards,omitempty"`
}

// CollectionKeyOptions controls document key generation.
type CollectionKeyOptions struct {
	Type          string `json:"type,omitempty"      yaml:"type,omitempty"`
	AllowUserKeys bool   `json:"allowUserKeys"       yaml:"allowUserKeys"`
	Increment     int    `json:"increment,omitempty" yaml:"increment,omitempty"`
	Offset        int    `json:"offset,omitempty"    yaml:"offset,omitempty"`
}

// CollectionCreateRequest is the body of POST /_api/collection.
type CollectionCreateRequest struct {
	Name        string                 `json:"name"                  yaml:"name"`
	Type        CollectionType         `json:"type,omitempty"        yaml:"type,omitempty"`
	WaitForSync bool                   `json:"waitForSync,omitempty" yaml:"waitForSync,omitempty"`
	IsSystem    bool                   `json:"isSystem,omitempty"    yaml:"isSystem,omitempty"`
	Schema      map[string]interface{} `json:"schema,omitempty"      yaml:"schema,omitempty"`
	KeyOptions  *CollectionKeyOptions  `json:"keyOptions,omitempty"  yaml:"keyOptions,omitempty"`
}

// CollectionPropertiesUpdate is the body of PUT .../properties.
type CollectionPropertiesUpdate struct {
	WaitForSync *bool                  `json:"waitForSync,omitempty" yaml:"waitForSync,omitempty"`
	Schema      map[string]interface{} `json:"schema,omitempty"      yaml:"schema,omitempty"`
}

// CollectionFigures carries the detailed statistics of GET .../figures.
type CollectionFigures struct {
	CollectionProperties `yaml:",inline"`

	Count   int64                  `json:"count"   yaml:"count"`
	Figures map[string]interface{} `json:"figures" yaml:"figures"`
}

// DocumentMeta identifies a document revision. The optional New and Old
// fields are populated when the operation requested returnNew/returnOld.
type DocumentMeta struct {
	ID     string          `json:"_id"               yaml:"_id"`
	Key    string          `json:"_key"              yaml:"_key"`
	Rev    string          `json:"_rev"              yaml:"_rev"`
	OldRev string          `json:"_oldRev,omitempty" yaml:"_oldRev,omitempty"`
	New    json.RawMessage `json:"new,omitempty"     yaml:"-"`
	Old    json.RawMessage `json:"old,omitempty"     yaml:"-"`
}

// DocumentOptions are the query-string options shared by document writes.
type DocumentOptions struct {
	WaitForSync   bool
	ReturnNew     bool
	ReturnOld     bool
	Silent        bool
	Overwrite     bool
	OverwriteMode string
	KeepNull      *bool
	MergeObjects  *bool

	// IfMatch/IfNoneMatch set the revision precondition headers on reads
	// and conditional writes.
	IfMatch     string
	IfNoneMatch string
}

// EdgeDefinition relates an edge collection to its vertex collections.
type EdgeDefinition struct {
	Collection string   `json:"collection" yaml:"collection"`
	From       []string `json:"from"       yaml:"from"`
	To         []string `json:"to"         yaml:"to"`
}

// Graph describes a named graph.
type Graph struct {
	Name              string           `json:"name"                        yaml:"name"`
	EdgeDefinitions   []EdgeDefinition `json:"edgeDefinitions"             yaml:"edgeDefinitions"`
	OrphanCollections []string         `json:"orphanCollections,omitempty" yaml:"orphanCollections,omitempty"`
	ID                string           `json:"_id,omitempty"               yaml:"_id,omitempty"`
	Rev               string           `json:"_rev,omitempty"              yaml:"_rev,omitempty"`
}

// GraphCreateRequest is the body of POST /_api/gharial.
type GraphCreateRequest struct {
	Name              string                 `json:"name"                        yaml:"name"`
	EdgeDefinitions   []EdgeDefinition       `json:"edgeDefinitions,omitempty"   yaml:"edgeDefinitions,omitempty"`
	OrphanCollections []string               `json:"orphanCollections,omitempty" yaml:"orphanCollections,omitempty"`
	Options           map[string]interface{} `json:"options,omitempty"           yaml:"options,omitempty"`
}

// Index describes an index as returned by the index API. The handle in ID has
// the form "collection/number".
type Index struct {
	ID          string   `json:"id"                    yaml:"id"`
	Name        string   `json:"name,omitempty"        yaml:"name,omitempty"`
	Type        string   `json:"type"                  yaml:"type"`
	Fields      []string `json:"fields"                yaml:"fields"`
	Unique      bool     `json:"unique,omitempty"      yaml:"unique,omitempty"`
	Sparse      bool     `json:"sparse,omitempty"      yaml:"sparse,omitempty"`
	Deduplicate bool     `json:"deduplicate,omitempty" yaml:"deduplicate,omitempty"`

	// TTL indexes only.
	ExpireAfter *int `json:"expireAfter,omitempty" yaml:"expireAfter,omitempty"`

	IsNewlyCreated bool `json:"isNewlyCreated,omitempty" yaml:"isNewlyCreated,omitempty"`
}

// IndexCreateRequest is the body of POST /_api/index?collection={name}.
type IndexCreateRequest struct {
	Type         string   `json:"type"                   yaml:"type"`
	Fields       []string `json:"fields"                 yaml:"fields"`
	Name         string   `json:"name,omitempty"         yaml:"name,omitempty"`
	Unique       bool     `json:"unique,omitempty"       yaml:"unique,omitempty"`
	Sparse       bool     `json:"sparse,omitempty"       yaml:"sparse,omitempty"`
	ExpireAfter  *int     `json:"expireAfter,omitempty"  yaml:"expireAfter,omitempty"`
	InBackground bool     `json:"inBackground,omitempty" yaml:"inBackground,omitempty"`
}

// JobKind selects a job id listing.
type JobKind string

const (
	// JobsPending lists jobs still executing.
	JobsPending JobKind = "pending"
	// JobsDone lists jobs whose result is ready for retrieval.
	JobsDone JobKind = "done"
)

// JobStatus is the state of a stored async job.
type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusDone    JobStatus = "done"
)

// CursorStats are the query statistics reported under extra.stats.
type CursorStats struct {
	WritesExecuted  int64   `json:"writesExecuted"            yaml:"writesExecuted"`
	WritesIgnored   int64   `json:"writesIgnored"             yaml:"writesIgnored"`
	ScannedFull     int64   `json:"scannedFull"               yaml:"scannedFull"`
	ScannedIndex    int64   `json:"scannedIndex"              yaml:"scannedIndex"`
	Filtered        int64   `json:"filtered"                  yaml:"filtered"`
	HTTPRequests    int64   `json:"httpRequests"              yaml:"httpRequests"`
	ExecutionTime   float64 `json:"executionTime"             yaml:"executionTime"`
	PeakMemoryUsage int64   `json:"peakMemoryUsage"           yaml:"peakMemoryUsage"`
	FullCount       *int64  `json:"fullCount,omitempty"       yaml:"fullCount,omitempty"`
}

// CursorProfile is the per-phase timing breakdown requested via the profile
// query option. The server reports phase names with embedded spaces.
type CursorProfile struct {
	Initializing       float64 `json:"initializing"        yaml:"initializing"`
	Parsing            float64 `json:"parsing"             yaml:"parsing"`
	OptimizingAST      float64 `json:"optimizing ast"      yaml:"optimizingAst"`
	LoadingCollections float64 `json:"loading collections" yaml:"loadingCollections"`
	InstantiatingPlan  float64 `json:"instantiating plan"  yaml:"instantiatingPlan"`
	OptimizingPlan     float64 `json:"optimizing plan"     yaml:"optimizingPlan"`
	Executing          float64 `json:"executing"           yaml:"executing"`
	Finalizing         float64 `json:"finalizing"          yaml:"finalizing"`
}

// CursorExtra carries the statistics, warnings, and optional profile that
// accompany a cursor batch. The server omits it on cache hits.
type CursorExtra struct {
	Stats    *CursorStats   `json:"stats,omitempty"    yaml:"stats,omitempty"`
	Warnings []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Profile  *CursorProfile `json:"profile,omitempty"  yaml:"profile,omitempty"`
}

// CursorBatch is one page of a query result: the initial response of
// POST /_api/cursor or a subsequent PUT /_api/cursor/{id}. HasMore is a
// pointer so that a response missing the field is detected as a protocol
// mismatch rather than read as end-of-data.
type CursorBatch struct {
	ID      string            `json:"id,omitempty"`
	Result  []json.RawMessage `json:"result"`
	HasMore *bool             `json:"hasMore"`
	Count   *int64            `json:"count,omitempty"`
	Extra   *CursorExtra      `json:"extra,omitempty"`
	Cached  bool              `json:"cached"`
}
