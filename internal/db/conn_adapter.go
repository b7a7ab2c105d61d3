package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// ConnAdapter adapts *pgx.Conn to dwh.Session.
//
// Thread-Safety: NOT safe for concurrent use (pgx.Conn is not).
type ConnAdapter struct {
	conn *pgx.Conn
}

// NewConnAdapter wraps an open connection.
func NewConnAdapter(conn *pgx.Conn) *ConnAdapter {
	return &ConnAdapter{conn: conn}
}

// Exec runs sql in its own transaction: committed when it succeeds,
// rolled back when it fails.
func (a *ConnAdapter) Exec(ctx context.Context, sql string) (pgconn.CommandTag, error) {
	var tag pgconn.CommandTag
	err := pgx.BeginFunc(ctx, a.conn, func(tx pgx.Tx) error {
		var err error
		tag, err = tx.Exec(ctx, sql)
		return err
	})
	return tag, err
}

// QueryRow executes a query that is expected to return at most one row.
func (a *ConnAdapter) QueryRow(ctx context.Context, sql string, args ...any) dwh.Row {
	return a.conn.QueryRow(ctx, sql, args...)
}

// Close releases the connection.
func (a *ConnAdapter) Close(ctx context.Context) error {
	return a.conn.Close(ctx)
}

// Conn exposes the underlying connection, e.g. for bulk seeding in tests.
func (a *ConnAdapter) Conn() *pgx.Conn {
	return a.conn
}

// Verify ConnAdapter implements Session at compile time
var _ dwh.Session = (*ConnAdapter)(nil)
