package repository

import (
	"context"
	"database/sql"
)

// withTx runs fn inside a transaction on db.  The transaction is
// committed when fn returns nil and rolled back otherwise (including on
// panic).  fn must only use tx: with a single-connection pool, as used
// for SQLite, touching db while tx is open would block forever.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
