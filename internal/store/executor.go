package store

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DBExecutor is the subset of sqlx the repositories need. Both *sqlx.DB and
// *sqlx.Tx satisfy it, so a repository can run inside a transaction.
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	DriverName() string
}

var (
	_ DBExecutor = (*sqlx.DB)(nil)
	_ DBExecutor = (*sqlx.Tx)(nil)
)

// Pool is the process-wide connection pool: a DBExecutor that can also be
// pinged and closed.
type Pool interface {
	DBExecutor
	PingContext(ctx context.Context) error
	Close() error
	Stats() sql.DBStats
}

var _ Pool = (*sqlx.DB)(nil)
