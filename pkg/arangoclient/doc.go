// Package arangoclient provides the primary entry point for constructing an
// ArangoDB HTTP API client that implements the arango.Client interface.
//
// It layers endpoint normalization, HTTP transport, and authentication on top
// of the resource interfaces and types defined in the arango package. Most
// applications should import arangoclient to build a client, then use the
// returned arango.Client to access resource-specific clients, for example
// Query(), Collections(), Documents(), etc.
//
// Quick start
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
//
//	  // Minimal: just an endpoint (no auth, scoped to _system).
//	  cli, err := arangoclient.New(ctx, &arango.Config{Endpoint: "http://localhost:8529"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with a pre-issued JWT:
//	  cli, err = arangoclient.New(ctx, &arango.Config{
//	    Endpoint: "https://db.example.com:8529",
//	    Token:    "eyJhbGciOi...", // bearer token
//	  })
//
//	  // Or with username/password. Credentials are exchanged for a JWT via
//	  // /_open/auth, and the token is renewed automatically when the server
//	  // rejects it.
//	  cli, err = arangoclient.New(ctx, &arango.Config{
//	    Endpoint: "https://db.example.com:8529",
//	    Database: "orders",
//	    Username: "user",
//	    Password: "pass",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the arango.Client interface
//	  cursor, err := cli.Query().Execute(ctx, arango.NewQueryRequest("FOR d IN docs RETURN d"))
//	  if err != nil { log.Fatal(err) }
//	  defer cursor.Close()
//	}
//
// # TLS and development mode
//
// For local development, you can set Config.SkipTLSVerify=true. This is gated
// by the environment variable ARANGO_DEV_MODE to avoid accidental insecure
// usage in production environments.
//
// # Helpers
//
// The package also provides convenience constructors NewWithEndpoint,
// NewWithToken, NewWithPassword, and NewWithDatabase that wrap New with the
// appropriate configuration.
package arangoclient
