// Package database wraps database/sql with context-aware helpers, scoped
// transactions, query hooks and driver error mapping. All SQL stays explicit.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Config holds connection and pool settings.
type Config struct {
	DSN        string
	DriverName string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// QueryTimeout bounds a single repository call when the caller's context
	// carries no deadline. Zero disables it.
	QueryTimeout time.Duration

	Logger *slog.Logger
}

// DB is a concurrency-safe wrapper around *sql.DB.
type DB struct {
	sqldb   *sql.DB
	timeout time.Duration
	hooks   []Hook
	errMap  ErrorMapper
}

// Open opens the database described by cfg and verifies it with a ping.
func Open(cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database: DSN must not be empty")
	}
	if cfg.DriverName == "" {
		cfg.DriverName = "postgres"
	}

	sqldb, err := sql.Open(cfg.DriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	return New(sqldb, cfg.QueryTimeout, NewLogHook(cfg.Logger)), nil
}

// New wraps an already opened *sql.DB.
func New(sqldb *sql.DB, queryTimeout time.Duration, hooks ...Hook) *DB {
	filtered := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return &DB{
		sqldb:   sqldb,
		timeout: queryTimeout,
		hooks:   filtered,
		errMap:  DefaultErrorMapper(),
	}
}

// Close closes every pooled connection.
func (d *DB) Close() error { return d.sqldb.Close() }

// WithTimeout applies the configured query timeout unless ctx already has a
// deadline. The returned cancel func must always be called.
func (d *DB) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout == 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.timeout)
}

// Exec executes a statement that returns no rows.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := d.sqldb.ExecContext(ctx, query, args...)
	err = d.mapErr(err)
	d.after(ctx, query, args, time.Since(start), err)
	return res, err
}

// Query executes a query that returns rows. The caller must close the rows.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.sqldb.QueryContext(ctx, query, args...)
	err = d.mapErr(err)
	d.after(ctx, query, args, time.Since(start), err)
	return rows, err
}

// QueryRow executes a query expected to return at most one row.
func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *Row {
	start := time.Now()
	raw := d.sqldb.QueryRowContext(ctx, query, args...)
	d.after(ctx, query, args, time.Since(start), nil)
	return &Row{raw: raw, errMap: d.errMap}
}

func (d *DB) after(ctx context.Context, query string, args []any, elapsed time.Duration, err error) {
	for _, h := range d.hooks {
		h.AfterQuery(ctx, query, args, elapsed, err)
	}
}

func (d *DB) mapErr(err error) error {
	if err == nil {
		return nil
	}
	return d.errMap.Map(err)
}

// Row wraps *sql.Row and maps Scan errors through the error mapper.
type Row struct {
	raw    *sql.Row
	errMap ErrorMapper
}

// Scan copies the matched row into dest. ErrNotFound is returned when no row
// matched.
func (r *Row) Scan(dest ...any) error {
	err := r.raw.Scan(dest...)
	if err == nil {
		return nil
	}
	return r.errMap.Map(err)
}
