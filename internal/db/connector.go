package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// StandardConnector implements dwh.Connector for username/password
// authentication. A failed connection attempt is not retried.
type StandardConnector struct {
	config *dwh.ConnectionConfig
	logger dwh.Logger
}

// NewStandardConnector creates a new StandardConnector with the given configuration.
func NewStandardConnector(config *dwh.ConnectionConfig, logger dwh.Logger) *StandardConnector {
	return &StandardConnector{config: config, logger: logger}
}

// Connect opens a single connection and pings it.
func (c *StandardConnector) Connect(ctx context.Context) (dwh.Session, error) {
	return connect(ctx, c.config, c.logger)
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the ConnectionConfig's AuthMethod.
func NewConnector(config *dwh.ConnectionConfig, logger dwh.Logger) (dwh.Connector, error) {
	switch config.AuthMethod {
	case dwh.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case dwh.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, dwh.ErrUnsupportedAuthMethod)
	}
}

func connect(ctx context.Context, config *dwh.ConnectionConfig, logger dwh.Logger) (dwh.Session, error) {
	connConfig, err := pgx.ParseConfig(BuildConnectionString(config))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", err, dwh.ErrInvalidConfig)
	}
	connConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Info("%s: %s", notice.Severity, notice.Message)
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}

	return NewConnAdapter(conn), nil
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s
Possible causes:
  - The cluster is paused or still being created
  - Wrong host or port (Redshift listens on 5439 by default)
  - The cluster's security group does not allow your address
Cause: %w: %w`, addr, err, dwh.ErrConnectionFailed)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"
Possible causes:
  - CLUSTER.HOST is misspelled
  - The cluster was deleted
Cause: %w: %w`, host, err, dwh.ErrConnectionFailed)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"
Possible causes:
  - Wrong CLUSTER.DB_PASSWORD (or $PGPASSWORD)
  - Wrong CLUSTER.DB_USER
Cause: %w: %w`, database, err, dwh.ErrConnectionFailed)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist
Check CLUSTER.DB_NAME.
Cause: %w: %w`, database, err, dwh.ErrConnectionFailed)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s
Possible causes:
  - The cluster is not publicly accessible
  - A firewall is silently dropping packets
Cause: %w: %w`, addr, err, dwh.ErrConnectionFailed)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error
Possible causes:
  - The cluster requires SSL but CLUSTER.SSLMODE disables it
  - Certificate verification failed (try SSLMODE=require)
Cause: %w: %w`, err, dwh.ErrConnectionFailed)

	default:
		return fmt.Errorf("failed to connect to %s: %w: %w", addr, err, dwh.ErrConnectionFailed)
	}
}
