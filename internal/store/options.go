package store

import (
	"io"
	"log/slog"
	"time"
)

// Option configures Open.
type Option func(*options)

type options struct {
	initSQL     string
	logger      *slog.Logger
	busyTimeout time.Duration
	foreignKeys bool
	txIDs       TxIDGenerator
}

func defaultOptions() options {
	return options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		txIDs:  UUIDv7Generator{},
	}
}

// WithInitSQL runs script through Exec right after the database is opened,
// before any statement is prepared. Typically schema creation.
func WithInitSQL(script string) Option {
	return func(o *options) {
		o.initSQL = script
	}
}

// WithLogger sets the logger used for cache and transaction diagnostics.
// Everything is logged at debug level. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBusyTimeout sets how long the engine waits on a locked database
// before failing with SQLITE_BUSY. Zero leaves the engine default.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		o.busyTimeout = d
	}
}

// WithForeignKeys turns on foreign key enforcement.
func WithForeignKeys(enabled bool) Option {
	return func(o *options) {
		o.foreignKeys = enabled
	}
}

// WithTxIDGenerator replaces the UUIDv7 transaction ids in log output,
// typically with a deterministic sequence in tests. A nil generator is ignored.
func WithTxIDGenerator(g TxIDGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.txIDs = g
		}
	}
}
