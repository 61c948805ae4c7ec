// Package testutils wires containers, schema and connections for integration tests.
package testutils

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	"github.com/Black-And-White-Club/inhouse-bot/integration_tests/containers"
)

// TestEnvironment holds a migrated Postgres for integration tests.
type TestEnvironment struct {
	Ctx         context.Context
	PgContainer *postgres.PostgresContainer
	PgConnStr   string
	DB          *bun.DB
}

// NewTestEnvironment starts Postgres, applies migrations and registers cleanup
// on t. It skips the test under -short or when no container runtime is
// available.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgContainer, connStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("postgres container: %v", err)
	}
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	db := OpenBunDB(connStr)
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(ctx, db, connStr); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	return &TestEnvironment{Ctx: ctx, PgContainer: pgContainer, PgConnStr: connStr, DB: db}
}

// Reset truncates all rating tables.
func (env *TestEnvironment) Reset(t *testing.T) {
	t.Helper()
	if err := CleanupDatabase(env.Ctx, env.DB); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}
