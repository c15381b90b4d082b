package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/auditsink/internal/sink"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid         bool     `json:"valid"`
	Schema        string   `json:"schema"`
	Table         string   `json:"table"`
	Columns       []string `json:"columns"`
	AutoCreate    bool     `json:"auto_create"`
	IfTableExists string   `json:"if_table_exists"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a sink config without touching a database",
		Long: `Validate an auditsink config file.

Checks the file against the config schema, then runs the same checks the
sink runs at construction: the table name must be set, the columns must
resolve, and triggers must not be disabled. No database is opened.

Example:
  auditsink validate ./auditsink.yaml
  auditsink validate ./auditsink.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := loadSinkConfig(path, formatter)
	if err != nil {
		return err
	}

	sinkOpts, resolved, err := sink.Validate(cfg.Options, cfg.Settings...)
	if err != nil {
		return sinkFailure(err, formatter)
	}

	result := ValidationResult{
		Valid:         true,
		Schema:        sinkOpts.SchemaName,
		Table:         sinkOpts.TableName,
		AutoCreate:    sinkOpts.AutoCreateTable,
		IfTableExists: sinkOpts.IfTableExists.String(),
	}
	for _, c := range resolved.Columns() {
		result.Columns = append(result.Columns, c.Name)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Config valid: %s.%s\n", result.Schema, result.Table)
	for _, c := range resolved.Columns() {
		fmt.Fprintf(w, "  %-16s %s\n", c.Name, c.DataType)
	}
	return nil
}
