//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fivetwenty-io/arango/pkg/arango"
	"github.com/fivetwenty-io/arango/pkg/arangoclient"
)

// systemDatabase is the database used when ARANGO_TEST_DATABASE is unset.
// Database lifecycle tests require it.
const systemDatabase = "_system"

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Endpoint string
	Database string
	Username string
	Password string
	Token    string
	Verbose  bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	database := os.Getenv("ARANGO_TEST_DATABASE")
	if database == "" {
		database = systemDatabase
	}

	return &TestConfig{
		Endpoint: os.Getenv("ARANGO_TEST_ENDPOINT"),
		Database: database,
		Username: os.Getenv("ARANGO_TEST_USERNAME"),
		Password: os.Getenv("ARANGO_TEST_PASSWORD"),
		Token:    os.Getenv("ARANGO_TEST_TOKEN"),
		Verbose:  os.Getenv("ARANGO_TEST_VERBOSE") == "true",
	}
}

// SkipIfMissingConfig skips the test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Endpoint == "" {
		t.Skip("ARANGO_TEST_ENDPOINT not set, skipping integration test")
	}
}

// NewTestClient builds a client from the test configuration and verifies
// connectivity before handing it to the test.
func NewTestClient(ctx context.Context, t *testing.T, config *TestConfig) arango.Client {
	t.Helper()

	clientConfig := &arango.Config{
		Endpoint: config.Endpoint,
		Database: config.Database,
		Username: config.Username,
		Password: config.Password,
		Token:    config.Token,
	}
	if config.Verbose {
		clientConfig.Debug = true
	}

	client, err := arangoclient.New(ctx, clientConfig)
	if err != nil {
		t.Fatalf("failed to create client for %s: %v", config.Endpoint, err)
	}

	version, err := client.Version(ctx)
	if err != nil {
		t.Fatalf("failed to reach %s: %v", config.Endpoint, err)
	}

	if config.Verbose {
		t.Logf("Connected to %s %s (%s)", version.Server, version.Version, version.License)
	}

	return client
}

// GenerateTestName creates a unique test resource name. ArangoDB names may
// not contain dashes in every position, so the UUID is compacted.
func GenerateTestName(prefix string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]

	return fmt.Sprintf("%s_%s", prefix, suffix)
}

// CleanupCollection drops a test collection, tolerating absence
func CleanupCollection(ctx context.Context, t *testing.T, client arango.Client, name string) {
	t.Helper()

	err := client.Collections().Drop(ctx, name)
	if err != nil && !arango.IsNotFound(err) {
		t.Logf("Cleanup warning for collection %s: %v", name, err)
	}
}

// CleanupDatabase drops a test database, tolerating absence
func CleanupDatabase(ctx context.Context, t *testing.T, client arango.Client, name string) {
	t.Helper()

	err := client.Databases().Drop(ctx, name)
	if err != nil && !arango.IsNotFound(err) {
		t.Logf("Cleanup warning for database %s: %v", name, err)
	}
}

// CleanupGraph drops a test graph, tolerating absence
func CleanupGraph(ctx context.Context, t *testing.T, client arango.Client, name string) {
	t.Helper()

	err := client.Graphs().Drop(ctx, name, true)
	if err != nil && !arango.IsNotFound(err) {
		t.Logf("Cleanup warning for graph %s: %v", name, err)
	}
}

// WaitForCondition waits for a condition to be met with timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	timeoutChan := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if condition() {
				return
			}
		case <-timeoutChan:
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
	}
}
