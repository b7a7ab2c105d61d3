package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

type mockConnector struct {
	session dwh.Session
	err     error
}

func (m *mockConnector) Connect(_ context.Context) (dwh.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

// mockSession records every statement it is asked to execute.
type mockSession struct {
	mu       sync.Mutex
	executed []string
	queried  []string
	// failOn fails the first statement whose SQL contains the key.
	failOn   map[string]error
	rowScan  func(dest ...any) error
	closed   bool
	closeErr error
}

func (m *mockSession) Exec(_ context.Context, sql string) (pgconn.CommandTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.executed = append(m.executed, sql)
	for key, err := range m.failOn {
		if strings.Contains(sql, key) {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *mockSession) QueryRow(_ context.Context, sql string, _ ...any) dwh.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queried = append(m.queried, sql)
	return &mockRow{scanFunc: m.rowScan}
}

func (m *mockSession) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.closeErr
}

func (m *mockSession) statements() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.executed...)
}

func (m *mockSession) queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queried...)
}

type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.scanFunc != nil {
		return m.scanFunc(dest...)
	}
	return errors.New("no rows in result set")
}

type mockApprover struct {
	approved bool
	err      error
	calls    int
}

func (m *mockApprover) RequestApproval(_ context.Context, _ string) (bool, error) {
	m.calls++
	return m.approved, m.err
}

type mockLogger struct{}

func (m *mockLogger) Verbose(_ string, _ ...interface{}) {}
func (m *mockLogger) Info(_ string, _ ...interface{})    {}
func (m *mockLogger) Error(_ string, _ ...interface{})   {}
