package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Tx runs statements inside a transaction opened by ExecTx.
type Tx struct {
	sqltx *sql.Tx
	db    *DB
}

// Exec executes a statement that does not return rows.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := t.sqltx.ExecContext(ctx, query, args...)
	err = t.db.mapErr(err)
	t.db.after(ctx, query, args, time.Since(start), err)
	return res, err
}

// QueryRow executes a query expected to return at most one row.
func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *Row {
	start := time.Now()
	raw := t.sqltx.QueryRowContext(ctx, query, args...)
	t.db.after(ctx, query, args, time.Since(start), nil)
	return &Row{raw: raw, errMap: t.db.errMap}
}

// ExecTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back when fn returns an error or panics; a panic is re-raised after
// the rollback. The connection goes back to the pool in every case.
//
//	err := db.ExecTx(ctx, func(tx *Tx) error {
//	    _, err := tx.Exec(ctx, "DELETE FROM accounts WHERE id = $1", id)
//	    return err
//	})
func (d *DB) ExecTx(ctx context.Context, fn func(*Tx) error) (err error) {
	sqltx, err := d.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return d.mapErr(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqltx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqltx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("database: rollback failed (%v) after: %w", rbErr, err)
			}
		}
	}()

	if err = fn(&Tx{sqltx: sqltx, db: d}); err != nil {
		return err
	}

	if err = sqltx.Commit(); err != nil {
		return d.mapErr(err)
	}
	return nil
}
