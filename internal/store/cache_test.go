package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlwrap/internal/value"
)

func TestPrepare_ReturnsIdenticalHandle(t *testing.T) {
	ctx := context.Background()
	c := createTestConn(t)
	counter := withCountingCache(c)

	const q = "SELECT * FROM my_table WHERE key = ?"
	s1, err := c.Prepare(ctx, q)
	require.NoError(t, err)
	s2, err := c.Prepare(ctx, q)
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, 1, counter.calls[q], "engine prepare must run once per SQL text")
	assert.Equal(t, CacheStats{Hits: 1, Misses: 1}, c.CacheStats())
	assert.Equal(t, q, s1.SQL())
}

func TestPrepare_KeysAreVerbatim(t *testing.T) {
	ctx := context.Background()
	c := createTestConn(t)

	s1, err := c.Prepare(ctx, "SELECT * FROM my_table")
	require.NoError(t, err)
	s2, err := c.Prepare(ctx, "select * from my_table")
	require.NoError(t, err)
	s3, err := c.Prepare(ctx, "SELECT *  FROM my_table")
	require.NoError(t, err)

	assert.NotSame(t, s1, s2)
	assert.NotSame(t, s1, s3)
	assert.Equal(t, 3, c.CacheLen())
}

func TestPrepare_TemplatesShareCacheEntry(t *testing.T) {
	ctx := context.Background()
	c := createTestConn(t)
	counter := withCountingCache(c)

	for i := 1; i <= 5; i++ {
		_, err := c.Runf(ctx, "INSERT INTO my_table VALUES ({},{})", i, "v")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, counter.calls["INSERT INTO my_table VALUES (?,?)"])
	assert.Equal(t, 1, c.CacheLen())
}

func TestPrepare_FailureLeavesCacheUnchanged(t *testing.T) {
	ctx := context.Background()
	c := createTestConn(t)

	_, err := c.Prepare(ctx, "SELECT * FROM my_table")
	require.NoError(t, err)

	testCases := []struct {
		name string
		sql  string
	}{
		{"syntax error", "SELEC * FROM my_table"},
		{"unknown table", "SELECT * FROM no_such_table"},
		{"unknown column", "SELECT no_such_column FROM my_table"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Prepare(ctx, tc.sql)

			var prepErr *PrepareError
			require.ErrorAs(t, err, &prepErr)
			assert.Equal(t, tc.sql, prepErr.SQL)
			assert.Equal(t, 1, c.CacheLen())
		})
	}

	// Connection still usable after prepare failures.
	_, err = c.Queryf(ctx, "SELECT * FROM my_table")
	assert.NoError(t, err)
}

func TestClearStatementCache_Idempotence(t *testing.T) {
	ctx := context.Background()
	c := createTestConn(t)
	counter := withCountingCache(c)

	require.NoError(t, c.Exec(ctx, `
		INSERT INTO my_table VALUES (1, 'uno');
		INSERT INTO my_table VALUES (2, 'dos');
	`))

	const q = "SELECT * FROM my_table ORDER BY key"
	before, err := c.Queryf(ctx, q)
	require.NoError(t, err)
	held, err := c.Prepare(ctx, q)
	require.NoError(t, err)

	require.NoError(t, c.ClearStatementCache())
	assert.Equal(t, 0, c.CacheLen())

	after, err := c.Queryf(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 2, counter.calls[q], "cleared SQL must be prepared again")

	fresh, err := c.Prepare(ctx, q)
	require.NoError(t, err)
	assert.NotSame(t, held, fresh)

	// Handles obtained before Clear keep working until the Conn closes.
	rows, err := held.Query(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, rows)
}

func TestStmt_DirectUse(t *testing.T) {
	ctx := context.Background()
	c := createTestConn(t)

	insert, err := c.Prepare(ctx, "INSERT INTO my_table (key, value) VALUES(?,?)")
	require.NoError(t, err)

	for i, v := range []string{"uno momento", "dos taquitos", "tres amigos"} {
		_, err := insert.Run(ctx, i+1, v)
		require.NoError(t, err)
	}

	all, err := c.Prepare(ctx, "SELECT * FROM my_table")
	require.NoError(t, err)
	rows, err := all.Query(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	byKey, err := c.Prepare(ctx, "SELECT value FROM my_table WHERE key = ?")
	require.NoError(t, err)
	row, err := byKey.First(ctx, 3)
	require.NoError(t, err)
	v, _ := row.Get("value")
	assert.Equal(t, value.Text("tres amigos"), v)

	_, err = byKey.First(ctx, 42)
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = insert.Run(ctx, 4, struct{}{})
	var execErr *ExecutionError
	assert.ErrorAs(t, err, &execErr)
}
