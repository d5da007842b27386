package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlwrap/internal/sqltemplate"
	"github.com/roach88/sqlwrap/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	// Tx wraps every statement in one transaction.
	Tx bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <sql> [values...]",
		Short: "Run a templated statement for effect",
		Long: `Run a statement for its effect and report the number of changed
rows and the last inserted row id.

With --tx the statement runs between BEGIN and COMMIT, and is rolled back
if it fails.

Examples:
  sqlwrap --db app.db run "INSERT INTO t VALUES ({}, {})" 1 uno
  sqlwrap --db app.db run "DELETE FROM t WHERE a = {}" 1 --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatement(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Tx, "tx", false, "run inside a transaction")

	return cmd
}

// runResult is the run command's output payload.
type runResult struct {
	Changes      int64 `json:"changes"`
	LastInsertID int64 `json:"last_insert_id"`
}

func (r runResult) String() string {
	return fmt.Sprintf("changes: %d, last_insert_id: %d", r.Changes, r.LastInsertID)
}

func runStatement(opts *RunOptions, text string, values []string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)

	tmpl, err := sqltemplate.Format(text, parseArgs(values)...)
	if err != nil {
		return f.Fail(WrapExitError(ExitCommandError, "invalid template", err))
	}
	f.VerboseLog("%s", tmpl)

	conn, logger, err := openConn(cmd, opts.RootOptions)
	if err != nil {
		return f.Fail(err)
	}
	defer closeConn(conn, logger)

	ctx := commandContext(cmd)
	var res store.Result
	if opts.Tx {
		res, err = store.WithTransaction(ctx, conn, func(ctx context.Context) (store.Result, error) {
			return conn.Run(ctx, tmpl)
		})
	} else {
		res, err = conn.Run(ctx, tmpl)
	}
	if err != nil {
		return f.Fail(statementError("run", err))
	}
	return f.Success(runResult{Changes: res.Changes, LastInsertID: res.LastInsertID})
}
