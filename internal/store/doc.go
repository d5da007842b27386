// Package store is a thin client layer over an embedded SQLite database.
//
// A Conn owns exactly one engine connection and provides:
//   - Statement caching: Prepare returns the same *Stmt for identical SQL text
//   - Templates: First, Query and Run take a sqltemplate.Template, so values
//     are always bound as parameters and never spliced into SQL
//   - Transactions: WithTransaction and Conn.Tx BEGIN, run a unit of work,
//     then COMMIT, or ROLLBACK and return the original error
//
// # Connection Lifecycle
//
// Open normalizes an empty or blank location to ":memory:". File-backed
// databases are switched to WAL journaling; in-memory ones keep "memory".
// An optional init script runs before anything is prepared. BEGIN, COMMIT and
// ROLLBACK are prepared once and reused for the life of the Conn.
//
// After Close every operation, including calls on previously returned *Stmt
// handles, fails with ErrClosed.
//
// # Concurrency
//
// A Conn is meant for one goroutine at a time. Nothing inside is
// synchronized apart from Close. Use one Conn per goroutine, or guard a shared
// Conn externally.
//
// # Statement Cache
//
// The cache key is the SQL text, verbatim. Entries are never evicted; a
// caller that generates high-cardinality SQL text will grow the cache without
// bound until ClearStatementCache or Close.
//
// # Errors
//
//   - *PrepareError: the engine rejected SQL at prepare time
//   - *ExecError: raw Exec was rejected
//   - *ExecutionError: a prepared statement failed at bind or step time
//   - ErrClosed: the Conn was closed
//
// A failed statement leaves the Conn usable. Inside a transaction the failure
// rolls back everything since BEGIN.
package store
