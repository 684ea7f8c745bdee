// Package storetest runs tests against every available Store implementation.
package storetest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yigit/skilltrack/internal/app/migrations"
	"github.com/yigit/skilltrack/internal/app/repositories"
	"github.com/yigit/skilltrack/internal/app/repositories/memstore"
	"github.com/yigit/skilltrack/internal/db"
)

// DatabaseURLEnv names a disposable Postgres database. Its tables are truncated before each test.
const DatabaseURLEnv = "SKILLTRACK_TEST_DATABASE_URL"

const databaseLockKey int64 = 0x736b696c6c

// Factory opens an empty store for one test
type Factory func(t *testing.T) repositories.Store

// Factories returns the in-memory store and, when DatabaseURLEnv is set, the Postgres store
func Factories() map[string]Factory {
	out := map[string]Factory{
		"memory": func(t *testing.T) repositories.Store { return memstore.New() },
	}
	if url := os.Getenv(DatabaseURLEnv); url != "" {
		out["postgres"] = func(t *testing.T) repositories.Store { return Postgres(t, url) }
	}
	return out
}

// ForEach runs fn as a subtest against every store from Factories
func ForEach(t *testing.T, fn func(t *testing.T, store repositories.Store)) {
	t.Helper()
	for name, factory := range Factories() {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

// Postgres connects to url, applies migrations and empties every table
func Postgres(t *testing.T, url string) repositories.Store {
	t.Helper()
	ctx := context.Background()

	pdb, err := db.Connect(ctx, url, db.Options{
		MaxConns:      16,
		TxMaxAttempts: 30,
		TxRetryDelay:  2 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(pdb.Close)

	// packages are tested in parallel against the same database
	conn, err := pdb.Pool.Acquire(ctx)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "SELECT pg_advisory_lock($1)", databaseLockKey)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", databaseLockKey)
		conn.Release()
	})

	_, err = migrations.NewMigrator(pdb.Pool).Migrate(ctx)
	require.NoError(t, err)
	_, err = pdb.Pool.Exec(ctx, "TRUNCATE attendees, classes, trainers, skills, sessions, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	return repositories.NewPostgresStore(pdb)
}
