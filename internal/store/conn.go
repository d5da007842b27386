package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/sqlwrap/internal/sqltemplate"
)

// MemoryLocation is the engine's name for a private, non-persistent database.
const MemoryLocation = ":memory:"

// Control statements prepared once per Conn.
const (
	sqlBegin    = "BEGIN"
	sqlCommit   = "COMMIT"
	sqlRollback = "ROLLBACK"
)

// Conn is one open connection to the embedded database.
//
// It exclusively owns the engine connection, the statement cache and the
// BEGIN/COMMIT/ROLLBACK statements. It is not safe for concurrent use.
type Conn struct {
	db       *sql.DB
	conn     *sql.Conn
	location string
	logger   *slog.Logger
	txIDs    TxIDGenerator

	cache    *StatementCache
	begin    *sql.Stmt
	commit   *sql.Stmt
	rollback *sql.Stmt

	inTx bool

	mu     sync.Mutex // guards closed
	closed bool
}

// NormalizeLocation maps an empty or whitespace-only location to MemoryLocation.
func NormalizeLocation(location string) string {
	if strings.TrimSpace(location) == "" {
		return MemoryLocation
	}
	return location
}

// Open opens or creates the database at location.
//
// Setup order:
//  1. Normalize location (blank means MemoryLocation)
//  2. Open the engine and pin a single connection
//  3. Apply pragmas: WAL journaling for file-backed databases, plus any
//     busy timeout or foreign key option
//  4. Run the init script, if any
//  5. Prepare BEGIN, COMMIT and ROLLBACK
//
// Any failure closes what was opened and returns the error.
func Open(ctx context.Context, location string, opts ...Option) (*Conn, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	location = NormalizeLocation(location)

	db, err := sql.Open("sqlite3", location)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One engine connection for the life of the Conn. An in-memory database
	// lives and dies with its connection, and the control statements must
	// run on the same connection as the work they bracket.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	c := &Conn{
		db:       db,
		conn:     conn,
		location: location,
		logger:   o.logger.With("location", location),
		txIDs:    o.txIDs,
	}
	c.cache = newStatementCache(conn, c)

	if err := c.setup(ctx, o); err != nil {
		c.closeEngine()
		return nil, err
	}

	c.logger.Debug("database opened")
	return c, nil
}

func (c *Conn) setup(ctx context.Context, o options) error {
	if err := applyPragmas(ctx, c.conn, pragmasFor(c.location, o)); err != nil {
		return fmt.Errorf("apply pragmas: %w", err)
	}

	if o.initSQL != "" {
		if err := c.Exec(ctx, o.initSQL); err != nil {
			return fmt.Errorf("run init script: %w", err)
		}
	}

	var err error
	if c.begin, err = c.prepareControl(ctx, sqlBegin); err != nil {
		return err
	}
	if c.commit, err = c.prepareControl(ctx, sqlCommit); err != nil {
		return err
	}
	if c.rollback, err = c.prepareControl(ctx, sqlRollback); err != nil {
		return err
	}
	return nil
}

func (c *Conn) prepareControl(ctx context.Context, query string) (*sql.Stmt, error) {
	stmt, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, &PrepareError{SQL: query, Err: err}
	}
	return stmt, nil
}

// pragmasFor lists the pragmas applied at open time.
func pragmasFor(location string, o options) []string {
	var pragmas []string
	if location != MemoryLocation {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	if o.busyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout = %d", o.busyTimeout.Milliseconds()))
	}
	if o.foreignKeys {
		pragmas = append(pragmas, "PRAGMA foreign_keys = ON")
	}
	return pragmas
}

// applyPragmas sets engine configuration on the pinned connection.
func applyPragmas(ctx context.Context, conn *sql.Conn, pragmas []string) error {
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Location returns the normalized location the Conn was opened with.
func (c *Conn) Location() string {
	return c.location
}

// InMemory reports whether the database is non-persistent.
func (c *Conn) InMemory() bool {
	return c.location == MemoryLocation
}

// Exec runs raw SQL, which may contain several statements.
// Nothing is cached. Rejection is reported as *ExecError.
func (c *Conn) Exec(ctx context.Context, script string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if _, err := c.conn.ExecContext(ctx, script); err != nil {
		return &ExecError{SQL: script, Err: err}
	}
	return nil
}

// Prepare returns the cached statement for query, preparing it on first use.
// Identical text always yields the identical *Stmt.
func (c *Conn) Prepare(ctx context.Context, query string) (*Stmt, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return c.cache.GetOrPrepare(ctx, query)
}

// First runs tmpl and returns its first row, or ErrNoRows.
func (c *Conn) First(ctx context.Context, tmpl sqltemplate.Template) (Row, error) {
	stmt, err := c.Prepare(ctx, tmpl.SQL)
	if err != nil {
		return Row{}, err
	}
	return stmt.first(ctx, tmpl.Args())
}

// Query runs tmpl and returns every row in engine order.
// The slice is empty, never nil, when nothing matches.
func (c *Conn) Query(ctx context.Context, tmpl sqltemplate.Template) ([]Row, error) {
	stmt, err := c.Prepare(ctx, tmpl.SQL)
	if err != nil {
		return nil, err
	}
	return stmt.query(ctx, tmpl.Args())
}

// Run executes tmpl for effect and reports what changed.
func (c *Conn) Run(ctx context.Context, tmpl sqltemplate.Template) (Result, error) {
	stmt, err := c.Prepare(ctx, tmpl.SQL)
	if err != nil {
		return Result{}, err
	}
	return stmt.run(ctx, tmpl.Args())
}

// Firstf formats text with sqltemplate.Format and calls First.
func (c *Conn) Firstf(ctx context.Context, text string, args ...any) (Row, error) {
	tmpl, err := sqltemplate.Format(text, args...)
	if err != nil {
		return Row{}, err
	}
	return c.First(ctx, tmpl)
}

// Queryf formats text with sqltemplate.Format and calls Query.
func (c *Conn) Queryf(ctx context.Context, text string, args ...any) ([]Row, error) {
	tmpl, err := sqltemplate.Format(text, args...)
	if err != nil {
		return nil, err
	}
	return c.Query(ctx, tmpl)
}

// Runf formats text with sqltemplate.Format and calls Run.
func (c *Conn) Runf(ctx context.Context, text string, args ...any) (Result, error) {
	tmpl, err := sqltemplate.Format(text, args...)
	if err != nil {
		return Result{}, err
	}
	return c.Run(ctx, tmpl)
}

// ClearStatementCache forgets every cached statement. The next request for
// previously cached SQL prepares it again.
func (c *Conn) ClearStatementCache() error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.cache.Clear()
	return nil
}

// CacheLen returns the number of cached statements.
func (c *Conn) CacheLen() int {
	return c.cache.Len()
}

// CacheStats returns cumulative cache hit and miss counts.
func (c *Conn) CacheStats() CacheStats {
	return c.cache.Stats()
}

// Close releases the engine connection. It is safe to call more than once;
// only the first call does anything.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if err := c.closeEngine(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	c.logger.Debug("database closed")
	return nil
}

// closeEngine releases statements, the pinned connection and the pool,
// collecting every failure.
func (c *Conn) closeEngine() error {
	var errs []error
	errs = append(errs, c.cache.closeAll())
	for _, stmt := range []*sql.Stmt{c.begin, c.commit, c.rollback} {
		if stmt != nil {
			errs = append(errs, stmt.Close())
		}
	}
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
	}
	if c.db != nil {
		errs = append(errs, c.db.Close())
	}
	return errors.Join(errs...)
}

func (c *Conn) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}
