package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sqlwrap/internal/store"
	"github.com/roach88/sqlwrap/internal/value"
)

// Error kinds accepted by expect.error and written to trace events.
const (
	ErrKindPrepare   = "prepare"
	ErrKindExec      = "exec"
	ErrKindExecution = "execution"
	ErrKindNoRows    = "no_rows"
	ErrKindClosed    = "closed"
	ErrKindNestedTx  = "nested_tx"
	ErrKindAny       = "any"
	errKindOther     = "other"
)

func validErrorKind(kind string) bool {
	switch kind {
	case ErrKindPrepare, ErrKindExec, ErrKindExecution, ErrKindNoRows,
		ErrKindClosed, ErrKindNestedTx, ErrKindAny:
		return true
	}
	return false
}

// ErrorKind classifies err into one of the expect.error kinds.
// Sentinels are checked before the structured error types that may wrap them.
func ErrorKind(err error) string {
	var (
		prepErr *store.PrepareError
		execErr *store.ExecError
		runErr  *store.ExecutionError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrNestedTransaction):
		return ErrKindNestedTx
	case errors.Is(err, store.ErrClosed):
		return ErrKindClosed
	case errors.Is(err, store.ErrNoRows):
		return ErrKindNoRows
	case errors.As(err, &prepErr):
		return ErrKindPrepare
	case errors.As(err, &execErr):
		return ErrKindExec
	case errors.As(err, &runErr):
		return ErrKindExecution
	default:
		return errKindOther
	}
}

// AssertionError is returned when a step's outcome does not match its expectation.
type AssertionError struct {
	Step     string // Step path, e.g. steps[2].tx[0]
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Step, e.Expected, e.Actual)
}

// outcome is what a step actually produced.
type outcome struct {
	err     error
	rows    []store.Row
	changes *int64
	journal string
}

// checkExpect compares a step outcome against its expectation.
// A nil expectation means the step must succeed.
func checkExpect(where string, exp *Expect, got outcome) []error {
	kind := ErrorKind(got.err)

	if exp == nil || exp.Error == "" {
		if got.err != nil {
			return []error{&AssertionError{Step: where, Expected: "success", Actual: got.err.Error()}}
		}
	} else {
		if got.err == nil {
			return []error{&AssertionError{Step: where, Expected: "error " + exp.Error, Actual: "success"}}
		}
		if exp.Error != ErrKindAny && exp.Error != kind {
			return []error{&AssertionError{Step: where, Expected: "error " + exp.Error, Actual: fmt.Sprintf("error %s (%v)", kind, got.err)}}
		}
		return nil
	}

	if exp == nil {
		return nil
	}

	var errs []error
	if exp.Rows != nil && *exp.Rows != len(got.rows) {
		errs = append(errs, &AssertionError{Step: where, Expected: fmt.Sprintf("%d rows", *exp.Rows), Actual: fmt.Sprintf("%d rows", len(got.rows))})
	}
	if exp.Changes != nil {
		actual := "no change count"
		if got.changes != nil {
			actual = fmt.Sprintf("%d changes", *got.changes)
		}
		if got.changes == nil || *got.changes != *exp.Changes {
			errs = append(errs, &AssertionError{Step: where, Expected: fmt.Sprintf("%d changes", *exp.Changes), Actual: actual})
		}
	}
	if exp.Journal != "" && !strings.EqualFold(exp.Journal, got.journal) {
		errs = append(errs, &AssertionError{Step: where, Expected: "journal " + exp.Journal, Actual: "journal " + got.journal})
	}
	if exp.Values != nil {
		if err := matchValues(exp.Values, got.rows); err != nil {
			errs = append(errs, &AssertionError{Step: where, Expected: fmt.Sprintf("values %v", exp.Values), Actual: err.Error()})
		}
	}
	return errs
}

// matchValues compares expected row lists against actual rows positionally.
func matchValues(expected [][]any, rows []store.Row) error {
	if len(expected) != len(rows) {
		return fmt.Errorf("%d rows", len(rows))
	}
	for i, want := range expected {
		wantVals, err := value.OfAll(want)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		got := rows[i].Values
		if len(wantVals) != len(got) {
			return fmt.Errorf("row %d has %d columns", i, len(got))
		}
		for j := range wantVals {
			if !value.Equal(wantVals[j], got[j]) {
				return fmt.Errorf("row %d column %q = %s", i, rows[i].Columns[j], got[j])
			}
		}
	}
	return nil
}
