// Package harness runs YAML-defined SQL scenarios against a fresh store.Conn
// and records a deterministic trace of every step.
//
// # Scenario Format
//
//	name: tx_rollback
//	description: "A failing insert rolls back the whole transaction"
//	init_sql: |
//	  CREATE TABLE my_table(key INTEGER PRIMARY KEY, value TEXT NOT NULL) STRICT
//	steps:
//	  - run: "INSERT INTO my_table VALUES ({},{})"
//	    args: [1, "uno"]
//	  - tx:
//	      - run: "INSERT INTO my_table VALUES ({},{})"
//	        args: ["WRONG_TYPE", "dos"]
//	    expect:
//	      error: execution
//	  - query: "SELECT * FROM my_table"
//	    expect:
//	      rows: 1
//
// Each step names exactly one operation: exec, run, query, first, tx,
// journal, clear_cache, or close. SQL for run/query/first goes through
// sqltemplate.Format, so "{}" marks each argument.
//
// # Expectations
//
//   - rows: number of rows returned by query/first
//   - changes: rows changed by run
//   - error: prepare | exec | execution | no_rows | closed | nested_tx | any
//   - journal: memory | wal | delete
//   - values: expected rows as lists, compared after value.Of conversion
//
// A step without an error expectation fails the scenario if it errors.
//
// # Golden Traces
//
// RunWithGolden compares the JSON trace against testdata/golden/{name}.golden.
// Regenerate with:
//
//	go test ./internal/harness -update
package harness
