// Package storagetest provides a migrated PostgreSQL pool for repository tests.
package storagetest

import (
	"context"
	"os"
	"testing"

	"github.com/inkwell/blogapi/internal/config"
	"github.com/inkwell/blogapi/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnvDatabaseURL names the variable holding the test database DSN.
const EnvDatabaseURL = "TEST_DATABASE_URL"

// NewPool connects to TEST_DATABASE_URL, applies migrations and empties every
// table. The test is skipped when the variable is unset.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv(EnvDatabaseURL)
	if url == "" {
		t.Skipf("%s not set", EnvDatabaseURL)
	}

	ctx := context.Background()
	cfg := config.PostgresConfig{URL: url, MaxConns: 4}

	if err := storage.Migrate(ctx, cfg); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := storage.NewPostgresPool(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, `TRUNCATE comments, posts, refresh_tokens, users CASCADE;`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}
