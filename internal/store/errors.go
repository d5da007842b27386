package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrClosed is returned by every operation on a closed Conn.
var ErrClosed = errors.New("connection is closed")

// ErrNoRows is returned by First when the statement produced no rows.
// It is sql.ErrNoRows so either sentinel matches with errors.Is.
var ErrNoRows = sql.ErrNoRows

// ErrNestedTransaction is returned when WithTransaction is called while a
// transaction started by the same Conn is still open. Savepoints are not
// supported; the running transaction is left untouched.
var ErrNestedTransaction = errors.New("transaction already in progress")

// PrepareError reports SQL the engine refused to prepare
// (syntax error, unknown table or column).
type PrepareError struct {
	SQL string
	Err error
}

func (e *PrepareError) Error() string {
	return fmt.Sprintf("prepare %q: %v", e.SQL, e.Err)
}

func (e *PrepareError) Unwrap() error {
	return e.Err
}

// ExecError reports raw SQL rejected by Exec or by the init script.
type ExecError struct {
	SQL string
	Err error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("exec %q: %v", abbreviate(e.SQL), e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// ExecutionError reports a prepared statement that failed at bind or step
// time, e.g. a STRICT column rejecting a value of the wrong type.
type ExecutionError struct {
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute %q: %v", e.SQL, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// RollbackError wraps a failure of ROLLBACK itself. WithTransaction joins it
// with the error that caused the rollback, so the original stays matchable.
type RollbackError struct {
	Err error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback: %v", e.Err)
}

func (e *RollbackError) Unwrap() error {
	return e.Err
}

// UnknownJournalModeError is returned by JournalMode when the engine reports
// a mode outside memory, wal and delete.
type UnknownJournalModeError struct {
	Mode string
}

func (e *UnknownJournalModeError) Error() string {
	return fmt.Sprintf("unknown journal mode %q", e.Mode)
}

// maxErrSQL bounds how much of a multi-statement script is echoed in errors.
const maxErrSQL = 120

func abbreviate(s string) string {
	if len(s) <= maxErrSQL {
		return s
	}
	return s[:maxErrSQL] + "..."
}
