// Package pgtest connects to the PostgreSQL database behind a PostgREST under
// test and seeds fixtures. Tests using it are skipped when TEST_DATABASE is unset.
package pgtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

// Connect creates a new database connection for testing
func Connect(ctx context.Context, t testing.TB) *pgx.Conn {
	t.Helper()
	connString := os.Getenv("TEST_DATABASE")
	if connString == "" {
		t.Skip("TEST_DATABASE not set")
	}

	config, err := pgx.ParseConfig(connString)
	require.NoError(t, err)

	config.OnNotice = func(_ *pgconn.PgConn, n *pgconn.Notice) {
		t.Logf("PostgreSQL %s: %s", n.Severity, n.Message)
	}

	conn, err := pgx.ConnectConfig(ctx, config)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, conn.Close(ctx))
	})

	return conn
}

// Seed runs statements in one transaction and asks PostgREST to reload its
// schema cache so new tables and functions are visible.
func Seed(ctx context.Context, t testing.TB, conn *pgx.Conn, statements ...string) {
	t.Helper()
	err := pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, "NOTIFY pgrst, 'reload schema'")
		return err
	})
	require.NoError(t, err)
}

// Count returns the number of rows of table matching where, e.g.
// Count(ctx, t, conn, pgx.Identifier{"personal", "users"}, "status = $1", "ONLINE").
func Count(ctx context.Context, t testing.TB, conn *pgx.Conn, table pgx.Identifier, where string, args ...any) int {
	t.Helper()
	var n int
	err := conn.QueryRow(ctx, "SELECT count(*) FROM "+table.Sanitize()+" WHERE "+where, args...).Scan(&n)
	require.NoError(t, err)
	return n
}
