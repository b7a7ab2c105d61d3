package testing

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/sparkify-dwh/internal/catalog"
	"github.com/vvka-141/sparkify-dwh/internal/db"
	"github.com/vvka-141/sparkify-dwh/internal/logging"
	"github.com/vvka-141/sparkify-dwh/internal/services"
	"github.com/vvka-141/sparkify-dwh/internal/testinfra"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartSimplePostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: SPARKIFY_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv("SPARKIFY_TEST_CONN"); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("SPARKIFY_TEST_CONN not set and Docker unavailable: %v", err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// NewTestPipeline returns a pipeline service that auto-approves and renders
// PostgreSQL DDL.
func NewTestPipeline(t *testing.T) *services.PipelineService {
	t.Helper()

	return services.NewPipelineService(
		db.NewConnector,
		&ForceApprover{},
		logging.NewNullLogger(),
		catalog.WithDialect(catalog.DialectPostgres),
	)
}

// ForceApprover is a test approver that always approves.
type ForceApprover struct{}

// RequestApproval always returns true.
func (a *ForceApprover) RequestApproval(_ context.Context, _ string) (bool, error) {
	return true, nil
}

// CreateTestDB creates a uniquely named database, drops it when the test
// completes and returns its name.
func CreateTestDB(t *testing.T, connString string) string {
	t.Helper()

	ctx := context.Background()
	dbName := "sparkify_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect for test DB creation: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		t.Fatalf("Failed to create test database %s: %v", dbName, err)
	}

	t.Cleanup(func() { CleanupTestDB(t, connString, dbName) })
	return dbName
}

// CleanupTestDB drops the test database.
// Safe to call multiple times (uses DROP DATABASE IF EXISTS).
func CleanupTestDB(t *testing.T, connString, dbName string) {
	t.Helper()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Logf("Warning: Failed to connect for cleanup: %v", err)
		return
	}
	defer pool.Close()

	terminateQuery := `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`
	if _, err := pool.Exec(ctx, terminateQuery, dbName); err != nil {
		t.Logf("Warning: Failed to terminate connections to %s: %v", dbName, err)
	}

	if _, err := pool.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName)); err != nil {
		t.Logf("Warning: Failed to drop database %s: %v", dbName, err)
	}
}

// PipelineConfigFor points a pipeline config at dbName on the server
// behind connString. Ingestion values are placeholders; they are only
// rendered into COPY statements.
func PipelineConfigFor(t *testing.T, connString, dbName string) dwh.PipelineConfig {
	t.Helper()

	parsed, err := pgx.ParseConfig(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}

	return dwh.PipelineConfig{
		Connection: dwh.ConnectionConfig{
			Host:       parsed.Host,
			Port:       int(parsed.Port),
			Database:   dbName,
			Username:   parsed.User,
			Password:   parsed.Password,
			SSLMode:    "disable",
			AuthMethod: dwh.AuthMethodStandard,
			AppName:    dwh.ApplicationName,
		},
		Ingestion: dwh.IngestionConfig{
			LogData:     "s3://udacity-dend/log_data",
			LogJSONPath: "s3://udacity-dend/log_json_path.json",
			SongData:    "s3://udacity-dend/song_data",
			RoleARN:     "arn:aws:iam::123456789012:role/dwhRole",
		},
	}
}

// OpenSession connects with the pipeline's own connector and closes the
// session when the test completes.
func OpenSession(t *testing.T, config dwh.PipelineConfig) *db.ConnAdapter {
	t.Helper()

	connector, err := db.NewConnector(&config.Connection, logging.NewNullLogger())
	if err != nil {
		t.Fatalf("Failed to create connector: %v", err)
	}

	session, err := connector.Connect(context.Background())
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = session.Close(context.Background()) })

	adapter, ok := session.(*db.ConnAdapter)
	if !ok {
		t.Fatalf("unexpected session type %T", session)
	}
	return adapter
}
