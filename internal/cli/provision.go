package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/auditsink/internal/sink"
	"github.com/roach88/auditsink/internal/store"
)

// ProvisionOptions holds flags for the provision command.
type ProvisionOptions struct {
	*RootOptions
	Database string
}

// ProvisionResult is the JSON payload of the provision command.
type ProvisionResult struct {
	Schema  string `json:"schema"`
	Table   string `json:"table"`
	Created bool   `json:"created"`
}

// NewProvisionCommand creates the provision command.
func NewProvisionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProvisionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "provision <config>",
		Short: "Create the destination table",
		Long: `Construct the sink with auto_create_table enabled so the destination
table is created. if_table_exists decides whether an existing table is
accepted (skip) or reported as a failure (fail).

The database is taken from --db, otherwise from connection_string, which the
AUDITSINK_CONNECTION_STRING environment variable overrides.

Example:
  auditsink provision --db ./audit.db ./auditsink.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides connection_string)")

	return cmd
}

func runProvision(opts *ProvisionOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := loadSinkConfig(path, formatter)
	if err != nil {
		return err
	}
	if _, _, err := sink.Validate(cfg.Options, cfg.Settings...); err != nil {
		return sinkFailure(err, formatter)
	}
	st, err := openStore(cfg, opts.Database, formatter)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	sinkOpts := cfg.Options
	sinkOpts.AutoCreateTable = true
	schema := sinkOpts.SchemaName
	if schema == "" {
		schema = sink.DefaultSchemaName
	}

	ctx := commandContext(cmd)
	existed, err := st.TableExists(ctx, schema, sinkOpts.TableName)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to inspect database", err)
	}

	as, err := newSink(st, sinkOpts, cfg.Settings, logger)
	if err != nil {
		return sinkFailure(err, formatter)
	}
	_ = as.Close()

	result := ProvisionResult{
		Schema:  as.Options().SchemaName,
		Table:   as.Options().TableName,
		Created: !existed,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if result.Created {
		fmt.Fprintf(formatter.Writer, "✓ Created table %s.%s\n", result.Schema, result.Table)
	} else {
		fmt.Fprintf(formatter.Writer, "✓ Table %s.%s already exists\n", result.Schema, result.Table)
	}
	return nil
}

// newSink constructs an audit sink over st with production ids.
func newSink(st *store.Store, opts sink.Options, settings []sink.Setting, logger *slog.Logger) (*sink.AuditSink, error) {
	all := make([]sink.Setting, 0, len(settings)+1)
	all = append(all, settings...)
	all = append(all, sink.WithLogger(logger))
	return sink.New(opts, store.NewDependencyFactory(st), all...)
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
