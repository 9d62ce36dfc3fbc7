// Package arango provides types, interfaces, and helpers for working with the
// ArangoDB HTTP API.
//
// # Overview
//
// The arango package defines the domain types (e.g., Collection, DocumentMeta,
// Graph, Index) and the interfaces for resource-oriented clients (e.g.,
// CollectionsClient, DocumentsClient, QueryClient). A concrete implementation
// of these clients is provided by the arangoclient package, which wires
// configuration, transport, and authentication. Most consumers should import
// arangoclient to construct a client and then interact with the resource
// client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/arango/pkg/arango"
//	  "github.com/fivetwenty-io/arango/pkg/arangoclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := arangoclient.New(ctx, &arango.Config{
//	    Endpoint: "http://localhost:8529",
//	    Username: "root",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  colls, err := cli.Collections().List(ctx, true)
//	  if err != nil { log.Fatal(err) }
//	  _ = colls
//	}
//
// # Queries and cursors
//
// AQL queries run through the cursor protocol: the server answers the create
// call with a first batch and, for larger result sets, an opaque cursor id
// that the client drains batch by batch. Cursor exposes this as a lazy
// iterator:
//
//	cursor, err := cli.Query().Execute(ctx,
//	  arango.NewQueryRequest("FOR d IN docs RETURN d").WithBatchSize(100))
//	if err != nil { log.Fatal(err) }
//	defer cursor.Close(ctx)
//
//	for cursor.Next(ctx) {
//	  var doc map[string]interface{}
//	  if err := cursor.Decode(&doc); err != nil { break }
//	}
//	if err := cursor.Err(); err != nil { /* abnormal termination */ }
//
// Close releases the server-side cursor when iteration stops early; after
// normal exhaustion it is a no-op.
//
// # Errors
//
// Server-reported errors are represented by ArangoError, whose ErrorNum field
// carries the server's domain error code and is the value to branch on.
// Helpers such as IsNotFound, IsConflict, and IsCursorExpired cover the common
// cases. Transport failures, credential failures, and malformed responses are
// kept distinct as NetworkError, AuthenticationError, and DecodeError.
//
// # Authentication
//
// Clients authenticate with a JWT obtained from /_open/auth, a pre-issued
// token, or per-request basic auth. With username/password credentials an
// expired token is renewed transparently: a 401 triggers exactly one issuance
// and one retry of the original request, and concurrent renewals coalesce
// into a single issuance call.
package arango
