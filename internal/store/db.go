package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Leahcim-1/rd-comment-service/internal/logger"
)

// DriverName is the database/sql driver every pool is opened with.
const DriverName = "postgres"

const statementTimeoutParam = "statement_timeout"

// DBConfig describes the process-wide connection pool.
type DBConfig struct {
	URL              string
	ConnMaxLifetime  time.Duration
	MaxOpenConns     int
	MaxIdleConns     int
	StatementTimeout time.Duration
}

func NewDBConfig(url string) *DBConfig {
	return &DBConfig{
		URL:             url,
		ConnMaxLifetime: 10 * time.Minute,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
	}
}

// Connect opens the pool and verifies it with a ping. The caller owns the
// returned pool and must Close it.
func (cfg *DBConfig) Connect(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, cfg.DataSourceName())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := cfg.prepare(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	logger.DB().WithFields(map[string]interface{}{
		"url":       RedactURL(cfg.URL),
		"max_open":  cfg.MaxOpenConns,
		"max_idle":  cfg.MaxIdleConns,
		"life_time": cfg.ConnMaxLifetime.String(),
	}).Info("database pool ready")
	return db, nil
}

func (cfg *DBConfig) prepare(ctx context.Context, db *sqlx.DB) error {
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// DataSourceName returns the URL handed to the driver. A statement timeout
// travels as a startup parameter so every pooled connection carries it; a
// timeout already present in the URL wins.
func (cfg *DBConfig) DataSourceName() string {
	if cfg.StatementTimeout <= 0 {
		return cfg.URL
	}
	ms := strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)

	u, err := url.Parse(cfg.URL)
	if err == nil && u.Scheme != "" {
		q := u.Query()
		if q.Has(statementTimeoutParam) {
			return cfg.URL
		}
		q.Set(statementTimeoutParam, ms)
		u.RawQuery = q.Encode()
		return u.String()
	}

	if strings.Contains(cfg.URL, statementTimeoutParam+"=") {
		return cfg.URL
	}
	return strings.TrimSpace(cfg.URL + " " + statementTimeoutParam + "=" + ms)
}

// RedactURL hides the password of a postgres:// URL. Key/value DSNs are
// returned as a fixed placeholder.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "<dsn>"
	}
	return u.Redacted()
}
