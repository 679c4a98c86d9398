package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type emptyRow struct{}

func (emptyRow) Scan(dest ...any) error { return pgx.ErrNoRows }

func TestFakeDBPanicsWhenUnset(t *testing.T) {
	db := &FakeDB{}
	ctx := context.Background()
	require.Panics(t, func() { _, _ = db.Exec(ctx, "UPDATE users") })
	require.Panics(t, func() { _, _ = db.Query(ctx, "SELECT 1") })
	require.Panics(t, func() { db.QueryRow(ctx, "SELECT 1") })
	require.Panics(t, func() { _ = db.Ping(ctx) })
	require.NotPanics(t, db.Close)
}

func TestFakeDBDelegates(t *testing.T) {
	ctx := context.Background()
	var calls []string
	db := &FakeDB{
		ExecFn: func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			calls = append(calls, "exec")
			require.Equal(t, "UPDATE users SET password_hash = $1 WHERE id = $2", sql)
			require.Len(t, args, 2)
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
		QueryFn: func(context.Context, string, ...any) (pgx.Rows, error) {
			calls = append(calls, "query")
			return nil, errors.New("q")
		},
		QueryRowFn: func(context.Context, string, ...any) pgx.Row {
			calls = append(calls, "row")
			return emptyRow{}
		},
		PingFn:  func(context.Context) error { calls = append(calls, "ping"); return nil },
		CloseFn: func() { calls = append(calls, "close") },
	}

	tag, err := db.Exec(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", "h", 1)
	require.NoError(t, err)
	require.EqualValues(t, 1, tag.RowsAffected())

	_, err = db.Query(ctx, "SELECT 1")
	require.Error(t, err)

	require.ErrorIs(t, db.QueryRow(ctx, "SELECT 1").Scan(), pgx.ErrNoRows)
	require.NoError(t, db.Ping(ctx))
	db.Close()

	require.Equal(t, []string{"exec", "query", "row", "ping", "close"}, calls)
}
