package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlwrap/internal/value"
)

// myTableSchema is a STRICT table, so binding text to key fails at step time.
const myTableSchema = `CREATE TABLE my_table(
	key INTEGER PRIMARY KEY,
	value TEXT NOT NULL
) STRICT`

// createTestConn opens an in-memory Conn with my_table created.
func createTestConn(t *testing.T, opts ...Option) *Conn {
	t.Helper()
	opts = append([]Option{WithInitSQL(myTableSchema)}, opts...)
	c, err := Open(context.Background(), "", opts...)
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { c.Close() })
	return c
}

// createFileConn opens a file-backed Conn in a temp directory.
func createFileConn(t *testing.T, opts ...Option) (*Conn, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	c, err := Open(context.Background(), path, opts...)
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { c.Close() })
	return c, path
}

// countRows returns the number of rows in my_table.
func countRows(t *testing.T, c *Conn) int64 {
	t.Helper()
	row, err := c.Firstf(context.Background(), "SELECT COUNT(*) AS n FROM my_table")
	require.NoError(t, err)
	n, ok := row.Get("n")
	require.True(t, ok)
	return int64(n.(value.Int))
}

// countingPreparer records how often the engine prepare primitive is hit.
type countingPreparer struct {
	inner Preparer
	calls map[string]int
}

func newCountingPreparer(inner Preparer) *countingPreparer {
	return &countingPreparer{inner: inner, calls: make(map[string]int)}
}

func (p *countingPreparer) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	p.calls[query]++
	return p.inner.PrepareContext(ctx, query)
}

// withCountingCache swaps c's cache for one backed by a countingPreparer.
func withCountingCache(c *Conn) *countingPreparer {
	counter := newCountingPreparer(c.conn)
	c.cache = newStatementCache(counter, c)
	return counter
}
