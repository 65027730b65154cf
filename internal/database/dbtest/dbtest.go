//go:build integration

// Package dbtest starts a disposable migrated Postgres for store tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/MrJamesThe3rd/schemeportal/internal/database"
)

const dbName = "schemeportal"

// Postgres returns a connection to a fresh database with every migration
// applied. The container is terminated when the test ends.
func Postgres(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.New(connStr, database.Pool{MaxOpen: 10, MaxIdle: 5, MaxLifetime: time.Minute})
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, dbName))

	return db
}
