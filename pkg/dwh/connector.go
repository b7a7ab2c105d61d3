package dwh

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// Connector establishes a warehouse session. Implementations differ in how
// they authenticate (static password, cloud IAM token).
type Connector interface {
	// Connect opens one session. The caller must Close it when done.
	Connect(ctx context.Context) (Session, error)
}

// Session is a single warehouse connection. It is not safe for concurrent use;
// the pipeline drives it from one goroutine.
type Session interface {
	// Exec runs sql as its own unit of work and commits it before returning.
	// On error nothing from this statement is committed.
	Exec(ctx context.Context, sql string) (pgconn.CommandTag, error)

	// QueryRow executes a query that is expected to return at most one row.
	// Errors are deferred until Row's Scan method is called.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// Close releases the connection.
	Close(ctx context.Context) error
}

// Row represents a single row returned by QueryRow.
type Row interface {
	Scan(dest ...any) error
}
