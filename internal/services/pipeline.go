package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/sparkify-dwh/internal/catalog"
	"github.com/vvka-141/sparkify-dwh/internal/checksum"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// ConnectorFactory builds the connector matching a connection's auth method.
type ConnectorFactory func(*dwh.ConnectionConfig, dwh.Logger) (dwh.Connector, error)

// closeTimeout bounds connection release after the run's context is done.
const closeTimeout = 10 * time.Second

// PipelineService implements dwh.Pipeline.
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance.
type PipelineService struct {
	connectorFactory ConnectorFactory
	approver         dwh.Approver
	logger           dwh.Logger
	catalogOptions   []catalog.Option
	newRunID         func() string
}

// NewPipelineService creates a new PipelineService with all dependencies injected.
// Panics on nil dependencies: those are programmer errors caught at startup.
func NewPipelineService(
	connectorFactory ConnectorFactory,
	approver dwh.Approver,
	logger dwh.Logger,
	catalogOptions ...catalog.Option,
) *PipelineService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &PipelineService{
		connectorFactory: connectorFactory,
		approver:         approver,
		logger:           logger,
		catalogOptions:   catalogOptions,
		newRunID:         uuid.NewString,
	}
}

// Run executes the pipeline: optional drop/create, then load, then transform.
func (s *PipelineService) Run(ctx context.Context, config dwh.PipelineConfig) error {
	cat, err := s.prepare(config)
	if err != nil {
		return err
	}

	planned := concatStatements(cat.Load(), cat.Transform())
	if config.Recreate {
		planned = cat.All()
	}

	runID := s.newRunID()
	s.logger.Info("Starting pipeline run %s against %s:%d/%s (plan %s, %d statements)",
		runID, config.Connection.Host, config.Connection.Port, config.Connection.Database,
		checksum.Short(catalog.Fingerprint(planned)), len(planned))

	if config.Recreate {
		if err := s.requestApproval(ctx, config); err != nil {
			return err
		}
	}

	return s.withSession(ctx, config, func(session dwh.Session) error {
		if config.Recreate {
			if err := s.runSetup(ctx, session, cat); err != nil {
				return err
			}
		}

		if err := s.RunLoad(ctx, session, cat.Load()); err != nil {
			return err
		}

		if err := s.RunTransform(ctx, session, cat.Transform()); err != nil {
			return err
		}

		s.logger.Info("✓ Pipeline run %s completed", runID)
		return nil
	})
}

// Setup drops and recreates every table.
func (s *PipelineService) Setup(ctx context.Context, config dwh.PipelineConfig) error {
	cat, err := s.prepare(config)
	if err != nil {
		return err
	}

	if err := s.requestApproval(ctx, config); err != nil {
		return err
	}

	return s.withSession(ctx, config, func(session dwh.Session) error {
		return s.runSetup(ctx, session, cat)
	})
}

// RunLoad executes the bulk-copy statements. It stops at the first failure.
// A failed COPY is annotated with the warehouse's latest load error when available.
func (s *PipelineService) RunLoad(ctx context.Context, session dwh.Session, statements []catalog.Statement) error {
	s.logger.Info("Loading %d staging table(s)...", len(statements))

	if err := executeAll(ctx, session, statements, s.logger); err != nil {
		var stmtErr *StatementError
		if errors.As(err, &stmtErr) && stmtErr.Statement.Phase == catalog.PhaseCopy {
			stmtErr.Detail = s.describeLoadFailure(ctx, session)
		}
		return fmt.Errorf("load phase: %w", err)
	}

	s.logger.Info("✓ Staging tables loaded")
	return nil
}

// RunTransform executes the insert-select statements. It stops at the first failure.
func (s *PipelineService) RunTransform(ctx context.Context, session dwh.Session, statements []catalog.Statement) error {
	s.logger.Info("Transforming staging data into %d analytics table(s)...", len(statements))

	if err := executeAll(ctx, session, statements, s.logger); err != nil {
		return fmt.Errorf("transform phase: %w", err)
	}

	s.logger.Info("✓ Analytics tables populated")
	return nil
}

func (s *PipelineService) runSetup(ctx context.Context, session dwh.Session, cat *catalog.Catalog) error {
	s.logger.Info("Dropping and recreating tables...")

	if err := executeAll(ctx, session, cat.Setup(), s.logger); err != nil {
		return fmt.Errorf("setup phase: %w", err)
	}

	s.logger.Info("✓ Tables recreated")
	return nil
}

// prepare validates config and builds the catalog. Nothing touches the
// warehouse until both succeed.
func (s *PipelineService) prepare(config dwh.PipelineConfig) (*catalog.Catalog, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cat, err := catalog.New(config.Ingestion, s.catalogOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to build statement catalog: %w", err)
	}
	return cat, nil
}

func (s *PipelineService) requestApproval(ctx context.Context, config dwh.PipelineConfig) error {
	approved, err := s.approver.RequestApproval(ctx, config.Connection.Database)
	if err != nil {
		return fmt.Errorf("approval request failed: %w", err)
	}
	if !approved {
		return dwh.ErrApprovalDenied
	}
	return nil
}

// withSession opens one session, runs fn and closes the session whatever fn returns.
func (s *PipelineService) withSession(ctx context.Context, config dwh.PipelineConfig, fn func(dwh.Session) error) (err error) {
	connector, err := s.connectorFactory(&config.Connection, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create connector: %w", err)
	}

	s.logger.Verbose("Connecting to %s:%d as %s (%s)",
		config.Connection.Host, config.Connection.Port, config.Connection.Username, config.Connection.AuthMethod)

	session, err := connector.Connect(ctx)
	if err != nil {
		return err
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		if cerr := session.Close(closeCtx); cerr != nil {
			s.logger.Error("failed to close connection: %v", cerr)
		}
	}()

	return fn(session)
}

// describeLoadFailure reads the stl_load_errors row of the session's last
// COPY. No row, or any failure to read it (e.g. not a Redshift cluster),
// yields an empty description.
func (s *PipelineService) describeLoadFailure(ctx context.Context, session dwh.Session) string {
	var (
		file   string
		line   int64
		column string
		reason string
	)
	err := session.QueryRow(ctx, catalog.DiagnoseLoadSQL).Scan(&file, &line, &column, &reason)
	if err != nil {
		s.logger.Verbose("load error details unavailable: %v", err)
		return ""
	}
	return fmt.Sprintf("Load error: %s (file %s, line %d, column %s)", reason, file, line, column)
}

func concatStatements(groups ...[]catalog.Statement) []catalog.Statement {
	var out []catalog.Statement
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Verify PipelineService implements dwh.Pipeline at compile time
var _ dwh.Pipeline = (*PipelineService)(nil)
