package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlwrap/internal/config"
	"github.com/roach88/sqlwrap/internal/logging"
	"github.com/roach88/sqlwrap/internal/store"
	"github.com/roach88/sqlwrap/internal/value"
)

// loadConfig reads --config (or the defaults plus environment) and applies
// the --db and --init flags on top.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.Config != "" {
		cfg, err = config.Load(opts.Config)
	} else {
		cfg, err = config.Parse(strings.NewReader(""))
	}
	if err != nil {
		return nil, err
	}

	if opts.DB != "" {
		cfg.Database.Location = opts.DB
	}
	if opts.Init != "" {
		cfg.Database.InitFile = opts.Init
	}
	return cfg, nil
}

// newLogger builds the command logger. Logs go to stderr so they never
// corrupt JSON output.
func newLogger(cmd *cobra.Command, opts *RootOptions, cfg *config.Config) *slog.Logger {
	return logging.New(cmd.ErrOrStderr(), cfg.Logging, opts.Verbose)
}

// openConn loads configuration and opens the database it names.
func openConn(cmd *cobra.Command, opts *RootOptions) (*store.Conn, *slog.Logger, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger := newLogger(cmd, opts, cfg)

	script, err := cfg.Database.InitScript()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to read init script", err)
	}

	logger.Debug("opening database", "location", store.NormalizeLocation(cfg.Database.Location))
	conn, err := store.Open(commandContext(cmd), cfg.Database.Location,
		store.WithInitSQL(script),
		store.WithBusyTimeout(cfg.Database.BusyTimeoutDuration()),
		store.WithForeignKeys(cfg.Database.ForeignKeys),
		store.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return conn, logger, nil
}

// closeConn closes conn, logging rather than returning a close failure.
func closeConn(conn *store.Conn, logger *slog.Logger) {
	if err := conn.Close(); err != nil {
		logger.Error("error closing database", "error", err)
	}
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// parseArgs converts command-line literals into statement values.
func parseArgs(args []string) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = value.Parse(a)
	}
	return out
}

// statementError maps a store error onto an exit error.
func statementError(verb string, err error) error {
	return WrapExitError(ExitFailure, fmt.Sprintf("%s failed", verb), err)
}

// newFormatter builds the formatter for cmd's output streams.
func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
