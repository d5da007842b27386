package cli

import (
	"github.com/spf13/cobra"
)

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "journal",
		Short: "Print the database journal mode",
		Long: `Print the journal mode of the opened database: "wal" for
database files, "memory" for in-memory databases.

Example:
  sqlwrap --db app.db journal`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(rootOpts, cmd)
		},
	}
}

func runJournal(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts)

	conn, logger, err := openConn(cmd, opts)
	if err != nil {
		return f.Fail(err)
	}
	defer closeConn(conn, logger)

	mode, err := conn.JournalMode(commandContext(cmd))
	if err != nil {
		return f.Fail(statementError("journal", err))
	}
	return f.Success(string(mode))
}
