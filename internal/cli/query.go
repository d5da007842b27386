package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/sqlwrap/internal/sqltemplate"
	"github.com/roach88/sqlwrap/internal/store"
)

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql> [values...]",
		Short: "Run a templated statement and print every row",
		Long: `Run a statement and print every row it produces.

Each "{}" in the SQL is replaced by a bound parameter taken, in order, from
the remaining arguments. Values parse as: null, integers, floats, x'hex'
blobs, 'quoted' text, and anything else as text. Write "{{}}" for a literal
"{}", e.g. inside a JSON string.

Examples:
  sqlwrap --db app.db query "SELECT * FROM t"
  sqlwrap --db app.db query "SELECT * FROM t WHERE a > {} AND b = {}" 10 uno
  sqlwrap --db app.db query "SELECT * FROM t" --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, args[0], args[1:], cmd)
		},
	}
}

// NewFirstCommand creates the first command.
func NewFirstCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "first <sql> [values...]",
		Short: "Run a templated statement and print its first row",
		Long: `Run a statement and print only its first row. Fails with exit
code 1 when the statement produces no rows.

Example:
  sqlwrap --db app.db first "SELECT value FROM t WHERE key = {}" 1`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFirst(rootOpts, args[0], args[1:], cmd)
		},
	}
}

func runQuery(opts *RootOptions, text string, values []string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts)

	tmpl, err := sqltemplate.Format(text, parseArgs(values)...)
	if err != nil {
		return f.Fail(WrapExitError(ExitCommandError, "invalid template", err))
	}
	f.VerboseLog("%s", tmpl)

	conn, logger, err := openConn(cmd, opts)
	if err != nil {
		return f.Fail(err)
	}
	defer closeConn(conn, logger)

	rows, err := conn.Query(commandContext(cmd), tmpl)
	if err != nil {
		return f.Fail(statementError("query", err))
	}
	return f.Rows(rows)
}

func runFirst(opts *RootOptions, text string, values []string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts)

	tmpl, err := sqltemplate.Format(text, parseArgs(values)...)
	if err != nil {
		return f.Fail(WrapExitError(ExitCommandError, "invalid template", err))
	}
	f.VerboseLog("%s", tmpl)

	conn, logger, err := openConn(cmd, opts)
	if err != nil {
		return f.Fail(err)
	}
	defer closeConn(conn, logger)

	row, err := conn.First(commandContext(cmd), tmpl)
	if err != nil {
		return f.Fail(statementError("first", err))
	}
	if f.Format == "json" {
		return f.Success(row)
	}
	return f.Rows([]store.Row{row})
}
