package store

import (
	"context"
	"database/sql"
	"errors"
)

// Preparer is the engine's prepare primitive. *sql.Conn satisfies it.
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// CacheStats counts cache lookups.
type CacheStats struct {
	Hits   uint64
	Misses uint64
}

// StatementCache maps SQL text to a prepared statement.
//
// Keys are the exact SQL text: no whitespace or case normalization. There is
// no eviction, size bound or TTL.
type StatementCache struct {
	prep  Preparer
	owner *Conn

	stmts map[string]*Stmt

	// retired holds statements dropped by Clear. Callers may still hold
	// them, so they stay open until the owning Conn closes.
	retired []*Stmt

	stats CacheStats
}

func newStatementCache(prep Preparer, owner *Conn) *StatementCache {
	return &StatementCache{
		prep:  prep,
		owner: owner,
		stmts: make(map[string]*Stmt),
	}
}

// GetOrPrepare returns the cached statement for query, or prepares and
// caches it. On a prepare failure the cache is left unchanged and the error
// is a *PrepareError.
func (sc *StatementCache) GetOrPrepare(ctx context.Context, query string) (*Stmt, error) {
	if stmt, ok := sc.stmts[query]; ok {
		sc.stats.Hits++
		return stmt, nil
	}

	sc.stats.Misses++
	raw, err := sc.prep.PrepareContext(ctx, query)
	if err != nil {
		return nil, &PrepareError{SQL: query, Err: err}
	}

	stmt := &Stmt{text: query, stmt: raw, owner: sc.owner}
	sc.stmts[query] = stmt
	sc.owner.logger.Debug("statement prepared", "sql", query, "cached", len(sc.stmts))
	return stmt, nil
}

// Clear drops every entry. Dropped statements remain usable by whoever
// still holds them.
func (sc *StatementCache) Clear() {
	for _, stmt := range sc.stmts {
		sc.retired = append(sc.retired, stmt)
	}
	sc.stmts = make(map[string]*Stmt)
}

// Len returns the number of cached statements.
func (sc *StatementCache) Len() int {
	return len(sc.stmts)
}

// Stats returns cumulative hit and miss counts.
func (sc *StatementCache) Stats() CacheStats {
	return sc.stats
}

// closeAll closes cached and retired statements.
func (sc *StatementCache) closeAll() error {
	var errs []error
	for _, stmt := range sc.stmts {
		errs = append(errs, stmt.stmt.Close())
	}
	for _, stmt := range sc.retired {
		errs = append(errs, stmt.stmt.Close())
	}
	sc.stmts = make(map[string]*Stmt)
	sc.retired = nil
	return errors.Join(errs...)
}
