package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/sparkify-dwh/internal/catalog"
	"github.com/vvka-141/sparkify-dwh/internal/checksum"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// executeAll runs statements in order on session. Each statement is its own
// committed unit of work. The first failure stops the sequence; statements
// already executed stay committed.
func executeAll(ctx context.Context, session dwh.Session, statements []catalog.Statement, logger dwh.Logger) error {
	for i, stmt := range statements {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: cancelled before %s: %w", dwh.ErrExecutionFailed, stmt.Name, err)
		}

		logger.Verbose("[%d/%d] %s (%s)", i+1, len(statements), stmt.Name, checksum.Short(checksum.Fingerprint(stmt.SQL)))
		start := time.Now()

		tag, err := session.Exec(ctx, stmt.SQL)
		if err != nil {
			return &StatementError{
				Statement: stmt,
				Position:  i + 1,
				Total:     len(statements),
				Err:       err,
			}
		}

		logger.Verbose("  %s: %s (%d rows) in %v", stmt.Name, tag.String(), tag.RowsAffected(), time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// StatementError reports which statement of a sequence failed.
// It matches dwh.ErrExecutionFailed with errors.Is.
type StatementError struct {
	Statement catalog.Statement
	Position  int
	Total     int
	Err       error

	// Detail carries extra diagnostics, e.g. the warehouse's load error log.
	Detail string
}

func (e *StatementError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: statement %d/%d %s (%s) failed: %v",
		dwh.ErrExecutionFailed, e.Position, e.Total, e.Statement.Name, e.Statement.Table, e.Err)

	var pgErr *pgconn.PgError
	if errors.As(e.Err, &pgErr) && pgErr.Detail != "" {
		fmt.Fprintf(&b, "\n  Detail: %s", pgErr.Detail)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, "\n  %s", e.Detail)
	}
	fmt.Fprintf(&b, "\n  SQL: %s", preview(e.Statement.SQL))
	return b.String()
}

func (e *StatementError) Unwrap() []error {
	return []error{dwh.ErrExecutionFailed, e.Err}
}

// preview collapses whitespace and truncates sql for error messages.
func preview(sql string) string {
	s := strings.Join(strings.Fields(sql), " ")
	if len(s) > dwh.MaxErrorPreviewLength {
		return s[:dwh.MaxErrorPreviewLength] + "..."
	}
	return s
}
