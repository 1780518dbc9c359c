package member

import (
	"context"
	"database/sql"
	"fmt"
)

// RunInTx executes fn inside a transaction. When tx is non-nil the caller
// already owns an open transaction and fn runs directly in it; commit and
// rollback remain the caller's responsibility, so nested invocations never
// create nested transactions. When tx is nil a new transaction is opened
// for the duration of fn: it commits if fn succeeds and rolls back if fn
// fails, propagating fn's error unchanged.
//
// Begin, commit, and rollback failures are reported wrapped in ErrTxFailed
// with the underlying cause attached.
func RunInTx(ctx context.Context, db *sql.DB, tx *sql.Tx, fn func(*sql.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}

	own, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrTxFailed, err)
	}
	if err := fn(own); err != nil {
		if rbErr := own.Rollback(); rbErr != nil {
			return fmt.Errorf("%w: rollback failed: %v: %w", ErrTxFailed, rbErr, err)
		}
		return err
	}
	if err := own.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrTxFailed, err)
	}
	return nil
}
