package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/sparkify-dwh/internal/catalog"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

func validConfig() dwh.PipelineConfig {
	return dwh.PipelineConfig{
		Connection: dwh.ConnectionConfig{
			Host:     "sparkify.example.redshift.amazonaws.com",
			Port:     5439,
			Database: "dev",
			Username: "awsuser",
			Password: "secret",
		},
		Ingestion: dwh.IngestionConfig{
			LogData:     "s3://udacity-dend/log_data",
			LogJSONPath: "s3://udacity-dend/log_json_path.json",
			SongData:    "s3://udacity-dend/song_data",
			RoleARN:     "arn:aws:iam::123456789012:role/dwhRole",
		},
	}
}

type harness struct {
	svc          *PipelineService
	session      *mockSession
	approver     *mockApprover
	factoryCalls int
}

func newHarness(session *mockSession, connectErr error) *harness {
	h := &harness{session: session, approver: &mockApprover{approved: true}}
	factory := func(_ *dwh.ConnectionConfig, _ dwh.Logger) (dwh.Connector, error) {
		h.factoryCalls++
		return &mockConnector{session: session, err: connectErr}, nil
	}
	h.svc = NewPipelineService(factory, h.approver, &mockLogger{})
	h.svc.newRunID = func() string { return "test-run" }
	return h
}

func expectedSQL(t *testing.T, stmts []catalog.Statement) []string {
	t.Helper()
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.SQL
	}
	return out
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(validConfig().Ingestion)
	require.NoError(t, err)
	return c
}

func TestNewPipelineService_NilDeps(t *testing.T) {
	factory := func(*dwh.ConnectionConfig, dwh.Logger) (dwh.Connector, error) { return nil, nil }

	tests := []struct {
		name string
		fn   func()
	}{
		{"nil connectorFactory", func() { NewPipelineService(nil, &mockApprover{}, &mockLogger{}) }},
		{"nil approver", func() { NewPipelineService(factory, nil, &mockLogger{}) }},
		{"nil logger", func() { NewPipelineService(factory, &mockApprover{}, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.fn)
		})
	}
}

func TestRun_LoadThenTransform(t *testing.T) {
	h := newHarness(&mockSession{}, nil)

	require.NoError(t, h.svc.Run(context.Background(), validConfig()))

	c := testCatalog(t)
	want := append(expectedSQL(t, c.Load()), expectedSQL(t, c.Transform())...)
	assert.Equal(t, want, h.session.statements())
	assert.True(t, h.session.closed)
	assert.Equal(t, 0, h.approver.calls, "no approval needed without recreate")
}

func TestRun_RecreateOrder(t *testing.T) {
	h := newHarness(&mockSession{}, nil)
	cfg := validConfig()
	cfg.Recreate = true

	require.NoError(t, h.svc.Run(context.Background(), cfg))

	assert.Equal(t, expectedSQL(t, testCatalog(t).All()), h.session.statements())
	assert.Equal(t, 1, h.approver.calls)
}

func TestRun_PhasesNeverInterleave(t *testing.T) {
	h := newHarness(&mockSession{}, nil)
	cfg := validConfig()
	cfg.Recreate = true

	require.NoError(t, h.svc.Run(context.Background(), cfg))

	rank := map[string]int{"DROP": 0, "CREATE": 1, "COPY": 2, "INSERT": 3}
	last := -1
	for _, sql := range h.session.statements() {
		verb := strings.Fields(sql)[0]
		r, ok := rank[verb]
		require.True(t, ok, "unexpected statement %q", verb)
		assert.GreaterOrEqual(t, r, last, "%s after a later phase", verb)
		last = r
	}
}

func TestRun_FirstLoadFailureSkipsTransform(t *testing.T) {
	copyErr := &pgconn.PgError{Code: "XX000", Message: "Load into table 'staging_events_table' failed"}
	session := &mockSession{failOn: map[string]error{"COPY staging_events_table": copyErr}}
	h := newHarness(session, nil)

	err := h.svc.Run(context.Background(), validConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, dwh.ErrExecutionFailed)
	assert.ErrorIs(t, err, copyErr)
	assert.Contains(t, err.Error(), "copy_staging_events")

	executed := h.session.statements()
	require.Len(t, executed, 1)
	for _, sql := range executed {
		assert.False(t, strings.HasPrefix(sql, "INSERT"), "transform must not run after a load failure")
	}
	assert.True(t, h.session.closed, "connection must be released after failure")
}

func TestRun_TransformFailureStopsSequence(t *testing.T) {
	dupErr := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	session := &mockSession{failOn: map[string]error{"INSERT INTO user_table": dupErr}}
	h := newHarness(session, nil)

	err := h.svc.Run(context.Background(), validConfig())
	require.Error(t, err)

	var stmtErr *StatementError
	require.ErrorAs(t, err, &stmtErr)
	assert.Equal(t, "insert_users", stmtErr.Statement.Name)
	assert.Equal(t, 2, stmtErr.Position)
	assert.Equal(t, 5, stmtErr.Total)

	// two copies, songplays, then the failing users insert
	assert.Len(t, h.session.statements(), 4)
	assert.True(t, h.session.closed)
}

func TestRun_MissingRoleFailsBeforeConnecting(t *testing.T) {
	h := newHarness(&mockSession{}, nil)
	cfg := validConfig()
	cfg.Ingestion.RoleARN = ""

	err := h.svc.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, dwh.ErrInvalidConfig)
	assert.Equal(t, 0, h.factoryCalls)
	assert.Empty(t, h.session.statements())
}

func TestRun_InvalidConnectionConfig(t *testing.T) {
	h := newHarness(&mockSession{}, nil)
	cfg := validConfig()
	cfg.Connection.Host = ""

	err := h.svc.Run(context.Background(), cfg)
	assert.ErrorIs(t, err, dwh.ErrInvalidConfig)
	assert.Equal(t, 0, h.factoryCalls)
}

func TestRun_ConnectionFailure(t *testing.T) {
	connErr := errors.Join(errors.New("refused"), dwh.ErrConnectionFailed)
	h := newHarness(&mockSession{}, connErr)

	err := h.svc.Run(context.Background(), validConfig())
	assert.ErrorIs(t, err, dwh.ErrConnectionFailed)
	assert.Empty(t, h.session.statements())
}

func TestRun_ApprovalDenied(t *testing.T) {
	h := newHarness(&mockSession{}, nil)
	h.approver.approved = false
	cfg := validConfig()
	cfg.Recreate = true

	err := h.svc.Run(context.Background(), cfg)
	assert.ErrorIs(t, err, dwh.ErrApprovalDenied)
	assert.Equal(t, 0, h.factoryCalls)
}

func TestRun_CloseErrorDoesNotMaskSuccess(t *testing.T) {
	h := newHarness(&mockSession{closeErr: errors.New("already closed")}, nil)
	assert.NoError(t, h.svc.Run(context.Background(), validConfig()))
}

func TestRun_LoadFailureDiagnostics(t *testing.T) {
	session := &mockSession{
		failOn: map[string]error{"COPY staging_songs_table": errors.New("Load into table failed")},
		rowScan: func(dest ...any) error {
			*dest[0].(*string) = "s3://udacity-dend/song_data/A/A/A/TRAAAAK.json"
			*dest[1].(*int64) = 1
			*dest[2].(*string) = "year"
			*dest[3].(*string) = "Invalid digit"
			return nil
		},
	}
	h := newHarness(session, nil)

	err := h.svc.Run(context.Background(), validConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Load error: Invalid digit (file s3://udacity-dend/song_data/A/A/A/TRAAAAK.json, line 1, column year)")
}

func TestRun_LoadFailureWithoutLoggedRow(t *testing.T) {
	session := &mockSession{
		failOn: map[string]error{"COPY staging_events_table": errors.New("S3ServiceException:Access Denied")},
		rowScan: func(dest ...any) error {
			return errors.New("no rows in result set")
		},
	}
	h := newHarness(session, nil)

	err := h.svc.Run(context.Background(), validConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3ServiceException:Access Denied")
	assert.NotContains(t, err.Error(), "Load error:")

	queries := session.queries()
	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], "WHERE query = pg_last_copy_id()")
}

func TestRun_CancelledContext(t *testing.T) {
	h := newHarness(&mockSession{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.svc.Run(ctx, validConfig())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.session.statements())
	assert.True(t, h.session.closed)
}

func TestSetup_DropThenCreate(t *testing.T) {
	h := newHarness(&mockSession{}, nil)

	require.NoError(t, h.svc.Setup(context.Background(), validConfig()))

	assert.Equal(t, expectedSQL(t, testCatalog(t).Setup()), h.session.statements())
	assert.Equal(t, 1, h.approver.calls)
	assert.True(t, h.session.closed)
}

func TestSetup_ApprovalError(t *testing.T) {
	h := newHarness(&mockSession{}, nil)
	h.approver.err = context.Canceled

	err := h.svc.Setup(context.Background(), validConfig())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, h.factoryCalls)
}

func TestStatementError_Message(t *testing.T) {
	err := &StatementError{
		Statement: catalog.Statement{Name: "insert_time", Table: "time_table", SQL: "INSERT INTO time_table\n   SELECT 1"},
		Position:  5,
		Total:     5,
		Err:       &pgconn.PgError{Code: "23505", Message: "duplicate key", Detail: "Key (start_time)=(x) already exists."},
	}

	msg := err.Error()
	assert.Contains(t, msg, "statement 5/5 insert_time (time_table) failed")
	assert.Contains(t, msg, "Detail: Key (start_time)=(x) already exists.")
	assert.Contains(t, msg, "SQL: INSERT INTO time_table SELECT 1")
	assert.ErrorIs(t, err, dwh.ErrExecutionFailed)
}

func TestPreview_Truncates(t *testing.T) {
	long := strings.Repeat("x", dwh.MaxErrorPreviewLength+50)
	p := preview(long)
	assert.Len(t, p, dwh.MaxErrorPreviewLength+3)
	assert.True(t, strings.HasSuffix(p, "..."))
}
