package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"afterschool/internal/metrics"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// DB wraps sql.DB for Postgres (pgx) or embedded SQLite.
type DB struct {
	Client  *sql.DB
	Driver  string
	metrics *metrics.Metrics
}

// Queryer is satisfied by *sql.DB and *sql.Tx.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewDB opens a pool with sane defaults, verifies it and applies the schema.
func NewDB(ctx context.Context, driver, dsn string, m *metrics.Metrics) (*DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one connection serializes writers and keeps tx-scoped pragmas honest
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}
	d := &DB{Client: db, Driver: driver, metrics: m}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := d.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

// SQLiteDSN builds a file DSN with foreign keys and a busy timeout enabled.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Healthy pings the database.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// WithMetrics returns d recording transaction outcomes on m.
func WithMetrics(d *DB, m *metrics.Metrics) *DB {
	d.metrics = m
	return d
}
