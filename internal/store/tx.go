package store

import (
	"context"
	"database/sql"
	"fmt"

	"afterschool/internal/apperr"
)

// InTx runs fn inside a read-write transaction. fn's error is returned as is
// after rollback; begin and commit failures become Storage errors.
//
// Postgres runs at REPEATABLE READ so multi-statement units such as a roster
// replace are never observed half done. SQLite transactions are serializable.
func (d *DB) InTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	return d.run(ctx, op, d.txOptions(false), fn)
}

// InReadTx runs fn inside a read-only transaction.
func (d *DB) InReadTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	return d.run(ctx, op, d.txOptions(true), fn)
}

func (d *DB) txOptions(readOnly bool) *sql.TxOptions {
	if d.Driver == DriverSQLite {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: readOnly}
}

func (d *DB) run(ctx context.Context, op string, opts *sql.TxOptions, fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.Client.BeginTx(ctx, opts)
	if err != nil {
		d.metrics.ObserveTx(op, "begin_failed")
		return apperr.StorageErr(fmt.Errorf("%s: begin: %w", op, err))
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			d.metrics.ObserveTx(op, "rollback")
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		d.metrics.ObserveTx(op, "rollback")
		return err
	}
	if err := tx.Commit(); err != nil {
		d.metrics.ObserveTx(op, "commit_failed")
		return Classify(fmt.Errorf("%s: commit: %w", op, err), "conflicting write, retry the request")
	}
	d.metrics.ObserveTx(op, "commit")
	return nil
}
