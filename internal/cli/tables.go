package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlwrap/internal/sqltemplate"
	"github.com/roach88/sqlwrap/internal/value"
)

// tablesQuery lists user tables. The type is bound so the statement text
// stays the same for every kind of schema object.
var tablesQuery = sqltemplate.MustFormat(
	"SELECT name FROM sqlite_schema WHERE type = {} AND name NOT LIKE 'sqlite_%' ORDER BY name",
	"table",
)

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables in the database",
		Long: `List the user tables of the opened database, after the init
script has run.

Examples:
  sqlwrap --db app.db tables
  sqlwrap --init schema.sql tables --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(rootOpts, cmd)
		},
	}
}

func runTables(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts)

	conn, logger, err := openConn(cmd, opts)
	if err != nil {
		return f.Fail(err)
	}
	defer closeConn(conn, logger)

	rows, err := conn.Query(commandContext(cmd), tablesQuery)
	if err != nil {
		return f.Fail(statementError("tables", err))
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.Get("name"); ok {
			if name, ok := v.(value.Text); ok {
				names = append(names, string(name))
			}
		}
	}

	if f.Format == "json" {
		return f.Success(names)
	}
	if len(names) == 0 {
		return f.Success("(no tables)")
	}
	return f.Success(strings.Join(names, "\n"))
}
