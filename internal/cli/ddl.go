package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/auditsink/internal/sink"
	"github.com/roach88/auditsink/internal/store"
)

// DDLResult is the JSON payload of the ddl command.
type DDLResult struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	SQL    string `json:"sql"`
}

// NewDDLCommand creates the ddl command.
func NewDDLCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ddl <config>",
		Short: "Print the CREATE TABLE statement for a config",
		Long: `Print the CREATE TABLE statement the sink would run when
auto_create_table is enabled. The config is validated first.

Example:
  auditsink ddl ./auditsink.yaml > logs.sql`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDDL(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runDDL(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := loadSinkConfig(path, formatter)
	if err != nil {
		return err
	}
	sinkOpts, resolved, err := sink.Validate(cfg.Options, cfg.Settings...)
	if err != nil {
		return sinkFailure(err, formatter)
	}

	ddl := store.CreateTableSQL(sinkOpts.SchemaName, sinkOpts.TableName, resolved.Columns())
	if formatter.Format == "json" {
		return formatter.Success(DDLResult{
			Schema: sinkOpts.SchemaName,
			Table:  sinkOpts.TableName,
			SQL:    ddl,
		})
	}

	fmt.Fprint(formatter.Writer, ddl)
	return nil
}
