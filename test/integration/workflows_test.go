//go:build integration
// +build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/arango/pkg/arango"
)

// TestWorkflow_CollectionDocumentJourney exercises the complete lifecycle of
// a collection: create, insert, read, update, query, and drop.
func TestWorkflow_CollectionDocumentJourney(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	ctx := context.Background()
	client := NewTestClient(ctx, t, config)

	collectionName := GenerateTestName("workflow_docs")
	defer CleanupCollection(ctx, t, client, collectionName)

	// 1. Create the collection
	properties, err := client.Collections().Create(ctx, &arango.CollectionCreateRequest{
		Name: collectionName,
	})
	require.NoError(t, err, "Failed to create collection")
	assert.Equal(t, collectionName, properties.Name)
	assert.Equal(t, arango.CollectionDocument, properties.Type)

	// 2. Insert documents
	type order struct {
		Key    string  `json:"_key,omitempty"`
		Item   string  `json:"item"`
		Amount float64 `json:"amount"`
	}

	meta, err := client.Documents().Create(ctx, collectionName,
		order{Key: "first", Item: "widget", Amount: 9.5}, nil)
	require.NoError(t, err, "Failed to create document")
	assert.Equal(t, "first", meta.Key)
	assert.NotEmpty(t, meta.Rev)

	batch := []interface{}{
		order{Item: "gadget", Amount: 4.25},
		order{Item: "gizmo", Amount: 12.0},
	}
	metas, err := client.Documents().CreateMany(ctx, collectionName, batch, nil)
	require.NoError(t, err, "Failed to create document batch")
	assert.Len(t, metas, 2)

	// 3. Count reflects the inserts
	count, err := client.Collections().Count(ctx, collectionName)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// 4. Read the document back
	var fetched order

	readMeta, err := client.Documents().Read(ctx, collectionName, "first", &fetched, nil)
	require.NoError(t, err, "Failed to read document")
	assert.Equal(t, meta.Rev, readMeta.Rev)
	assert.Equal(t, "widget", fetched.Item)

	// 5. Update with a revision precondition
	updated, err := client.Documents().Update(ctx, collectionName, "first",
		map[string]interface{}{"amount": 11.0},
		&arango.DocumentOptions{IfMatch: meta.Rev})
	require.NoError(t, err, "Failed to update document")
	assert.NotEqual(t, meta.Rev, updated.Rev)

	// A stale revision must be rejected
	_, err = client.Documents().Update(ctx, collectionName, "first",
		map[string]interface{}{"amount": 1.0},
		&arango.DocumentOptions{IfMatch: meta.Rev})
	require.Error(t, err)
	assert.True(t, arango.IsConflict(err), "expected a conflict error, got %v", err)

	// 6. Query the collection with bind variables
	request := arango.NewQueryRequest(
		"FOR doc IN @@collection FILTER doc.amount >= @minimum SORT doc.amount RETURN doc").
		WithBindVar("@collection", collectionName).
		WithBindVar("minimum", 5.0).
		WithCount()

	cursor, err := client.Query().Execute(ctx, request)
	require.NoError(t, err, "Failed to execute query")

	defer func() { _ = cursor.Close(context.Background()) }()

	var results []order

	require.NoError(t, cursor.All(ctx, &results))
	require.Len(t, results, 2)
	assert.Equal(t, "widget", results[0].Item)
	assert.Equal(t, "gizmo", results[1].Item)

	// 7. Delete and verify absence
	_, err = client.Documents().Delete(ctx, collectionName, "first", nil)
	require.NoError(t, err, "Failed to delete document")

	_, err = client.Documents().Read(ctx, collectionName, "first", &fetched, nil)
	require.Error(t, err)
	assert.True(t, arango.IsNotFound(err), "expected a not-found error, got %v", err)
}

// TestWorkflow_CursorBatching verifies that a small batch size still yields
// every document across multiple cursor round trips.
func TestWorkflow_CursorBatching(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	ctx := context.Background()
	client := NewTestClient(ctx, t, config)

	collectionName := GenerateTestName("workflow_batches")
	defer CleanupCollection(ctx, t, client, collectionName)

	_, err := client.Collections().Create(ctx, &arango.CollectionCreateRequest{Name: collectionName})
	require.NoError(t, err)

	const total = 25

	documents := make([]interface{}, 0, total)
	for i := 0; i < total; i++ {
		documents = append(documents, map[string]interface{}{"sequence": i})
	}

	_, err = client.Documents().CreateMany(ctx, collectionName, documents, nil)
	require.NoError(t, err)

	request := arango.NewQueryRequest("FOR doc IN @@collection SORT doc.sequence RETURN doc.sequence").
		WithBindVar("@collection", collectionName).
		WithBatchSize(4).
		WithCount()

	cursor, err := client.Query().Execute(ctx, request)
	require.NoError(t, err)

	defer func() { _ = cursor.Close(context.Background()) }()

	count, known := cursor.Count()
	require.True(t, known, "count requested but not reported")
	assert.Equal(t, int64(total), count)

	seen := 0

	for cursor.Next(ctx) {
		var sequence int

		require.NoError(t, cursor.Decode(&sequence))
		assert.Equal(t, seen, sequence)
		seen++
	}

	require.NoError(t, cursor.Err())
	assert.Equal(t, total, seen)
}

// TestWorkflow_GraphLifecycle creates a named graph, verifies its edge
// definitions, and drops it together with its collections.
func TestWorkflow_GraphLifecycle(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	ctx := context.Background()
	client := NewTestClient(ctx, t, config)

	graphName := GenerateTestName("workflow_graph")
	edgeCollection := GenerateTestName("workflow_edges")
	vertexCollection := GenerateTestName("workflow_vertices")

	defer func() {
		CleanupGraph(ctx, t, client, graphName)
		CleanupCollection(ctx, t, client, edgeCollection)
		CleanupCollection(ctx, t, client, vertexCollection)
	}()

	created, err := client.Graphs().Create(ctx, &arango.GraphCreateRequest{
		Name: graphName,
		EdgeDefinitions: []arango.EdgeDefinition{
			{
				Collection: edgeCollection,
				From:       []string{vertexCollection},
				To:         []string{vertexCollection},
			},
		},
	})
	require.NoError(t, err, "Failed to create graph")
	assert.Equal(t, graphName, created.Name)

	fetched, err := client.Graphs().Get(ctx, graphName)
	require.NoError(t, err)
	require.Len(t, fetched.EdgeDefinitions, 1)
	assert.Equal(t, edgeCollection, fetched.EdgeDefinitions[0].Collection)

	graphs, err := client.Graphs().List(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(graphs))
	for _, graph := range graphs {
		names = append(names, graph.Name)
	}

	assert.Contains(t, names, graphName)

	require.NoError(t, client.Graphs().Drop(ctx, graphName, true))

	_, err = client.Graphs().Get(ctx, graphName)
	require.Error(t, err)
	assert.True(t, arango.IsNotFound(err))
}

// TestWorkflow_IndexLifecycle creates a persistent index, finds it in the
// listing, and deletes it by handle.
func TestWorkflow_IndexLifecycle(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	ctx := context.Background()
	client := NewTestClient(ctx, t, config)

	collectionName := GenerateTestName("workflow_indexed")
	defer CleanupCollection(ctx, t, client, collectionName)

	_, err := client.Collections().Create(ctx, &arango.CollectionCreateRequest{Name: collectionName})
	require.NoError(t, err)

	index, err := client.Indexes().Create(ctx, collectionName, &arango.IndexCreateRequest{
		Type:   "persistent",
		Fields: []string{"email"},
		Unique: true,
	})
	require.NoError(t, err, "Failed to create index")
	assert.True(t, index.IsNewlyCreated)
	assert.NotEmpty(t, index.ID)

	// Creating the same index again reuses the existing one
	again, err := client.Indexes().Create(ctx, collectionName, &arango.IndexCreateRequest{
		Type:   "persistent",
		Fields: []string{"email"},
		Unique: true,
	})
	require.NoError(t, err)
	assert.False(t, again.IsNewlyCreated)
	assert.Equal(t, index.ID, again.ID)

	indexes, err := client.Indexes().List(ctx, collectionName)
	require.NoError(t, err)

	found := false

	for _, candidate := range indexes {
		if candidate.ID == index.ID {
			found = true
		}
	}

	assert.True(t, found, "created index missing from listing")

	require.NoError(t, client.Indexes().Delete(ctx, index.ID))

	_, err = client.Indexes().Get(ctx, index.ID)
	require.Error(t, err)
	assert.True(t, arango.IsNotFound(err))
}

// TestWorkflow_AsyncQuery submits a query as a stored async job, waits for
// completion, and collects the result cursor.
func TestWorkflow_AsyncQuery(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	ctx := context.Background()
	client := NewTestClient(ctx, t, config)

	request := arango.NewQueryRequest("FOR value IN 1..5 RETURN value * @factor").
		WithBindVar("factor", 10)

	jobID, err := client.Query().ExecuteAsync(ctx, request)
	require.NoError(t, err, "Failed to submit async query")
	require.NotEmpty(t, jobID)

	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	require.NoError(t, client.Jobs().Wait(waitCtx, jobID))

	cursor, err := client.Query().AsyncResult(ctx, jobID)
	require.NoError(t, err, "Failed to fetch async result")

	defer func() { _ = cursor.Close(context.Background()) }()

	var values []int

	require.NoError(t, cursor.All(ctx, &values))
	assert.Equal(t, []int{10, 20, 30, 40, 50}, values)
}

// TestWorkflow_DatabaseLifecycle creates a database with an owner user and
// drops it again. Requires access to _system.
func TestWorkflow_DatabaseLifecycle(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	if config.Database != systemDatabase {
		t.Skipf("database lifecycle requires _system, configured database is %s", config.Database)
	}

	ctx := context.Background()
	client := NewTestClient(ctx, t, config)

	databaseName := GenerateTestName("workflow_db")
	defer CleanupDatabase(ctx, t, client, databaseName)

	err := client.Databases().Create(ctx, &arango.DatabaseCreateRequest{
		Name: databaseName,
		Users: []arango.DatabaseUser{
			{Username: "workflow_owner", Active: true},
		},
	})
	require.NoError(t, err, "Failed to create database")

	// Creating it again must conflict
	err = client.Databases().Create(ctx, &arango.DatabaseCreateRequest{Name: databaseName})
	require.Error(t, err)
	assert.True(t, arango.IsConflict(err), "expected a conflict error, got %v", err)

	names, err := client.Databases().List(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, databaseName)

	require.NoError(t, client.Databases().Drop(ctx, databaseName))

	names, err = client.Databases().List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, names, databaseName)
}
