package harness

import (
	"github.com/roach88/sqlwrap/internal/store"
	"github.com/roach88/sqlwrap/internal/value"
)

// TraceEvent records one executed step. Field order is the golden file order.
type TraceEvent struct {
	Seq     int           `json:"seq"`
	Op      string        `json:"op"`
	SQL     string        `json:"sql,omitempty"`
	Params  []value.Value `json:"params,omitempty"`
	Rows    []store.Row   `json:"rows,omitempty"`
	Changes *int64        `json:"changes,omitempty"`
	Journal string        `json:"journal,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every step matched its expectation.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, plus commit/rollback
	// events closing each transaction.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addEvent appends ev with the next sequence number and returns its index.
func (r *Result) addEvent(ev TraceEvent) int {
	ev.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
	return len(r.Trace) - 1
}
