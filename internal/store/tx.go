package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mattn/go-sqlite3"
)

// WithTransaction runs fn between BEGIN and COMMIT on c.
//
// If fn returns an error, ROLLBACK is issued and that same error is returned,
// unwrapped, with a zero T. ROLLBACK is skipped when the engine has already
// ended the transaction itself (INSERT OR ROLLBACK, RAISE(ROLLBACK), disk
// full). If ROLLBACK itself fails, the result is
// errors.Join(original, *RollbackError), so errors.Is and errors.As still
// find the original. A panic in fn rolls back and re-panics.
//
// If COMMIT fails the transaction is rolled back and the commit error is
// returned as an *ExecutionError.
//
// Calling WithTransaction from inside fn is a precondition violation and
// returns ErrNestedTransaction without affecting the outer transaction.
func WithTransaction[T any](ctx context.Context, c *Conn, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if err := c.checkOpen(); err != nil {
		return zero, err
	}
	if c.inTx {
		return zero, ErrNestedTransaction
	}

	log := c.logger.With("tx", c.txIDs.Generate())

	if _, err := c.begin.ExecContext(ctx); err != nil {
		return zero, &ExecutionError{SQL: sqlBegin, Err: err}
	}
	c.inTx = true
	log.Debug("transaction started")

	defer func() {
		if p := recover(); p != nil {
			if rbErr := c.rollbackTx(ctx); rbErr != nil {
				log.Error("rollback after panic failed", "error", rbErr)
			}
			panic(p)
		}
	}()

	result, err := fn(ctx)
	if err != nil {
		return zero, c.abort(ctx, log, err)
	}

	if _, err := c.commit.ExecContext(ctx); err != nil {
		return zero, c.abort(ctx, log, &ExecutionError{SQL: sqlCommit, Err: err})
	}
	c.inTx = false
	log.Debug("transaction committed")
	return result, nil
}

// Tx is WithTransaction for units of work that produce no value.
func (c *Conn) Tx(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := WithTransaction(ctx, c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// InTx reports whether a transaction started by WithTransaction is open.
func (c *Conn) InTx() bool {
	return c.inTx
}

// abort rolls back after cause and returns the error the caller should see.
func (c *Conn) abort(ctx context.Context, log *slog.Logger, cause error) error {
	if rbErr := c.rollbackTx(ctx); rbErr != nil {
		log.Error("rollback failed", "cause", cause, "error", rbErr)
		return errors.Join(cause, rbErr)
	}
	log.Debug("transaction rolled back", "cause", cause)
	return cause
}

// rollbackTx issues ROLLBACK even if ctx is already cancelled.
func (c *Conn) rollbackTx(ctx context.Context) error {
	c.inTx = false
	if err := c.checkOpen(); err != nil {
		return &RollbackError{Err: err}
	}
	ended, err := c.autocommit()
	if err != nil {
		return &RollbackError{Err: err}
	}
	if ended {
		return nil
	}
	if _, err := c.rollback.ExecContext(context.WithoutCancel(ctx)); err != nil {
		return &RollbackError{Err: err}
	}
	return nil
}

// autocommit reports whether the engine connection is outside any
// transaction.
func (c *Conn) autocommit() (bool, error) {
	var on bool
	err := c.conn.Raw(func(driverConn any) error {
		sc, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		on = sc.AutoCommit()
		return nil
	})
	return on, err
}
