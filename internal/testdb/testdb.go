// Package testdb creates throwaway PostgreSQL databases for integration
// tests. Tests are skipped unless BENDER_TEST_DATABASE_URL points at a
// server the test user may create databases on.
package testdb

import (
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/Leahcim-1/rd-comment-service/internal/store"
)

// EnvURL holds an admin connection URL, e.g.
// postgres://postgres@localhost:5432/postgres?sslmode=disable.
const EnvURL = "BENDER_TEST_DATABASE_URL"

// TestDB provides a test database connection
type TestDB struct {
	DB       *sqlx.DB
	DBName   string
	ConnStr  string
	adminURL string
	t        *testing.T
}

// New creates a fresh database and registers its removal with t.Cleanup.
func New(t *testing.T, adminURL string) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	if adminURL == "" {
		t.Skipf("%s not set", EnvURL)
	}

	admin, err := sqlx.Open(store.DriverName, adminURL)
	require.NoError(t, err)
	defer admin.Close()

	dbName := fmt.Sprintf("bender_test_%d", time.Now().UnixNano())
	_, err = admin.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	require.NoError(t, err, "failed to create test database")

	connStr, err := withDatabase(adminURL, dbName)
	require.NoError(t, err)

	db, err := sqlx.Open(store.DriverName, connStr)
	require.NoError(t, err)

	tdb := &TestDB{
		DB:       db,
		DBName:   dbName,
		ConnStr:  connStr,
		adminURL: adminURL,
		t:        t,
	}
	t.Cleanup(tdb.Cleanup)
	return tdb
}

// Cleanup drops the test database
func (tdb *TestDB) Cleanup() {
	tdb.DB.Close()

	admin, err := sqlx.Open(store.DriverName, tdb.adminURL)
	if err != nil {
		tdb.t.Logf("Failed to connect for cleanup: %v", err)
		return
	}
	defer admin.Close()

	_, err = admin.Exec(`
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()`, tdb.DBName)
	if err != nil {
		tdb.t.Logf("Failed to terminate connections: %v", err)
	}

	if _, err := admin.Exec("DROP DATABASE IF EXISTS " + pq.QuoteIdentifier(tdb.DBName)); err != nil {
		tdb.t.Logf("Failed to drop test database: %v", err)
	}
}

// ExecuteSQL executes semicolon separated statements
func (tdb *TestDB) ExecuteSQL(sql string) error {
	for _, stmt := range strings.Split(sql, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tdb.DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute SQL: %w\nStatement: %s", err, stmt)
		}
	}
	return nil
}

// TableExists checks if a table exists
func (tdb *TestDB) TableExists(table store.Table) (bool, error) {
	schema := table.Schema
	if schema == "" {
		schema = "public"
	}

	var exists bool
	err := tdb.DB.Get(&exists, `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = $1
			AND table_name = $2
		)`, schema, table.Name)
	return exists, err
}

func withDatabase(rawURL, dbName string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return "", fmt.Errorf("%s must be a postgres:// URL", EnvURL)
	}
	u.Path = "/" + dbName
	return u.String(), nil
}
