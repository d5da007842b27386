package cli

import (
	"github.com/spf13/cobra"
)

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run raw SQL, possibly several statements",
		Long: `Run raw SQL against the database. The text may hold several
semicolon-separated statements. Nothing is cached and no values are bound.

Example:
  sqlwrap --db app.db exec "CREATE TABLE t(a INTEGER); INSERT INTO t VALUES (1)"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(rootOpts, args[0], cmd)
		},
	}
}

func runExec(opts *RootOptions, script string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts)

	conn, logger, err := openConn(cmd, opts)
	if err != nil {
		return f.Fail(err)
	}
	defer closeConn(conn, logger)

	if err := conn.Exec(commandContext(cmd), script); err != nil {
		return f.Fail(statementError("exec", err))
	}
	return f.Success("ok")
}
