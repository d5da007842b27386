package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/sqlwrap/internal/value"
)

// Stmt is a prepared statement owned by one Conn's cache.
// It is invalid once the Conn is closed.
type Stmt struct {
	text  string
	stmt  *sql.Stmt
	owner *Conn
}

// Result is the change metadata reported for a statement run for effect.
type Result struct {
	Changes      int64 `json:"changes"`
	LastInsertID int64 `json:"last_insert_id"`
}

// SQL returns the text the statement was prepared from.
func (s *Stmt) SQL() string {
	return s.text
}

// Run executes the statement with args bound positionally.
func (s *Stmt) Run(ctx context.Context, args ...any) (Result, error) {
	bound, err := s.bind(args)
	if err != nil {
		return Result{}, err
	}
	return s.run(ctx, bound)
}

// Query executes the statement and returns all rows.
func (s *Stmt) Query(ctx context.Context, args ...any) ([]Row, error) {
	bound, err := s.bind(args)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, bound)
}

// First executes the statement and returns the first row, or ErrNoRows.
func (s *Stmt) First(ctx context.Context, args ...any) (Row, error) {
	bound, err := s.bind(args)
	if err != nil {
		return Row{}, err
	}
	return s.first(ctx, bound)
}

// bind converts caller arguments through value.Of so only SQL value kinds
// reach the driver.
func (s *Stmt) bind(args []any) ([]any, error) {
	vals, err := value.OfAll(args)
	if err != nil {
		return nil, &ExecutionError{SQL: s.text, Err: err}
	}
	return value.Args(vals), nil
}

func (s *Stmt) run(ctx context.Context, args []any) (Result, error) {
	if err := s.owner.checkOpen(); err != nil {
		return Result{}, err
	}

	res, err := s.stmt.ExecContext(ctx, args...)
	if err != nil {
		return Result{}, &ExecutionError{SQL: s.text, Err: err}
	}

	out, err := resultOf(res)
	if err != nil {
		return Result{}, &ExecutionError{SQL: s.text, Err: err}
	}
	return out, nil
}

func resultOf(res sql.Result) (Result, error) {
	changes, err := res.RowsAffected()
	if err != nil {
		return Result{}, fmt.Errorf("read rows affected: %w", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return Result{}, fmt.Errorf("read last insert id: %w", err)
	}
	return Result{Changes: changes, LastInsertID: lastID}, nil
}

func (s *Stmt) query(ctx context.Context, args []any) ([]Row, error) {
	if err := s.owner.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, &ExecutionError{SQL: s.text, Err: err}
	}
	defer rows.Close()

	out, err := scanRows(rows, 0)
	if err != nil {
		return nil, &ExecutionError{SQL: s.text, Err: err}
	}
	return out, nil
}

func (s *Stmt) first(ctx context.Context, args []any) (Row, error) {
	if err := s.owner.checkOpen(); err != nil {
		return Row{}, err
	}

	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		return Row{}, &ExecutionError{SQL: s.text, Err: err}
	}
	defer rows.Close()

	out, err := scanRows(rows, 1)
	if err != nil {
		return Row{}, &ExecutionError{SQL: s.text, Err: err}
	}
	if len(out) == 0 {
		return Row{}, ErrNoRows
	}
	return out[0], nil
}
