package harness

import (
	"context"
	"fmt"

	"github.com/roach88/sqlwrap/internal/sqltemplate"
	"github.com/roach88/sqlwrap/internal/store"
)

// Run executes a scenario against a fresh connection and returns the result.
//
// The returned error is reserved for infrastructure failures (the database
// could not be opened). Steps that do not match their expectation are
// reported in Result.Errors and flip Result.Pass to false.
func Run(ctx context.Context, scenario *Scenario, opts ...store.Option) (*Result, error) {
	if scenario == nil {
		return nil, fmt.Errorf("scenario is nil")
	}

	if scenario.InitSQL != "" {
		opts = append(opts, store.WithInitSQL(scenario.InitSQL))
	}
	conn, err := store.Open(ctx, scenario.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	r := &runner{conn: conn, result: NewResult()}
	r.steps(ctx, scenario.Steps, "steps")
	return r.result, nil
}

type runner struct {
	conn   *store.Conn
	result *Result
}

// steps runs each step, checking its expectation. Inside a transaction the
// first unexpected error stops the body and is returned, so the tx step's own
// expectation judges it.
func (r *runner) steps(ctx context.Context, steps []Step, path string) error {
	nested := path != "steps"
	for i, step := range steps {
		where := fmt.Sprintf("%s[%d]", path, i)
		got := r.step(ctx, step, where)
		unexpected := got.err != nil && (step.Expect == nil || step.Expect.Error == "")
		if nested && unexpected {
			return got.err
		}
		for _, failure := range checkExpect(where, step.Expect, got) {
			r.result.AddError(failure.Error())
		}
	}
	return nil
}

func (r *runner) step(ctx context.Context, step Step, where string) outcome {
	op := step.Op()
	switch op {
	case OpExec:
		err := r.conn.Exec(ctx, step.Exec)
		r.result.addEvent(TraceEvent{Op: op, SQL: step.Exec, Error: ErrorKind(err)})
		return outcome{err: err}

	case OpRun, OpQuery, OpFirst:
		return r.statement(ctx, op, step)

	case OpTx:
		return r.tx(ctx, step, where)

	case OpJournal:
		mode, err := r.conn.JournalMode(ctx)
		r.result.addEvent(TraceEvent{Op: op, Journal: string(mode), Error: ErrorKind(err)})
		return outcome{err: err, journal: string(mode)}

	case OpClearCache:
		err := r.conn.ClearStatementCache()
		r.result.addEvent(TraceEvent{Op: op, Error: ErrorKind(err)})
		return outcome{err: err}

	case OpClose:
		err := r.conn.Close()
		r.result.addEvent(TraceEvent{Op: op, Error: ErrorKind(err)})
		return outcome{err: err}

	default:
		return outcome{err: fmt.Errorf("%s: no operation", where)}
	}
}

func (r *runner) statement(ctx context.Context, op string, step Step) outcome {
	text := map[string]string{OpRun: step.Run, OpQuery: step.Query, OpFirst: step.First}[op]

	tmpl, err := sqltemplate.Format(text, step.Args...)
	if err != nil {
		r.result.addEvent(TraceEvent{Op: op, SQL: text, Error: errKindOther})
		return outcome{err: err}
	}

	ev := TraceEvent{Op: op, SQL: tmpl.SQL, Params: tmpl.Params}
	var got outcome
	switch op {
	case OpRun:
		var res store.Result
		res, got.err = r.conn.Run(ctx, tmpl)
		if got.err == nil {
			changes := res.Changes
			got.changes = &changes
			ev.Changes = &changes
		}
	case OpQuery:
		got.rows, got.err = r.conn.Query(ctx, tmpl)
		ev.Rows = got.rows
	case OpFirst:
		var row store.Row
		row, got.err = r.conn.First(ctx, tmpl)
		if got.err == nil {
			got.rows = []store.Row{row}
			ev.Rows = got.rows
		}
	}
	ev.Error = ErrorKind(got.err)
	r.result.addEvent(ev)
	return got
}

// tx runs nested steps inside Conn.Tx. The opening event is recorded before
// the body and the commit or rollback event after it. A transaction that
// never started (closed, nested, BEGIN failed) marks the opening event instead.
func (r *runner) tx(ctx context.Context, step Step, where string) outcome {
	idx := r.result.addEvent(TraceEvent{Op: OpTx})

	started := false
	err := r.conn.Tx(ctx, func(ctx context.Context) error {
		started = true
		return r.steps(ctx, step.Tx, where+".tx")
	})

	switch {
	case !started:
		r.result.Trace[idx].Error = ErrorKind(err)
	case err == nil:
		r.result.addEvent(TraceEvent{Op: OpCommit})
	default:
		r.result.addEvent(TraceEvent{Op: OpRollback, Error: ErrorKind(err)})
	}
	return outcome{err: err}
}
