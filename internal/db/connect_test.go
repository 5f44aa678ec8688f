package db_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/db"
)

func TestParseDriver(t *testing.T) {
	for in, want := range map[string]db.Driver{
		"":         db.DriverSQLite,
		"sqlite3":  db.DriverSQLite,
		" PGX ":    db.DriverPostgres,
		"postgres": db.DriverPostgres,
	} {
		got, err := db.ParseDriver(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := db.ParseDriver("mysql")
	require.Error(t, err)

	_, err = db.Open(context.Background(), "mysql", "")
	require.Error(t, err)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	insert := func(tx *sql.Tx, key string) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`, "T", key, "{}", 1)
		return err
	}
	count := func() int {
		var n int
		require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_log`).Scan(&n))
		return n
	}

	require.NoError(t, db.WithTx(ctx, conn, func(tx *sql.Tx) error { return insert(tx, "a") }))
	require.Equal(t, 1, count())

	boom := errors.New("boom")
	err = db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		require.NoError(t, insert(tx, "b"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, count(), "rolled back")

	require.Panics(t, func() {
		_ = db.WithTx(ctx, conn, func(tx *sql.Tx) error {
			require.NoError(t, insert(tx, "c"))
			panic("bad")
		})
	})
	require.Equal(t, 1, count(), "rolled back on panic")
}
