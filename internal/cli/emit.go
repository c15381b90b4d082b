package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/auditsink/internal/logevent"
)

// EmitOptions holds flags for the emit command.
type EmitOptions struct {
	*RootOptions
	Database string
}

// EmitResult is the JSON payload of the emit command.
type EmitResult struct {
	Schema  string `json:"schema"`
	Table   string `json:"table"`
	Emitted int    `json:"emitted"`
}

// NewEmitCommand creates the emit command.
func NewEmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "emit <config> [events-file]",
		Short: "Write JSON-lines events through the audit sink",
		Long: `Read log events as JSON lines and write each one through the audit sink.

Every event is committed before the next line is read. The first event that
cannot be decoded or written stops the command with exit code 1; events
before it stay committed.

Events are read from events-file, or from stdin when it is omitted or "-".
Each line is an object such as:

  {"timestamp":"2024-01-01T00:00:00Z","level":"Warning",
   "messageTemplate":"User {UserName} logged in",
   "properties":{"UserName":"ann"}}

Example:
  auditsink emit --db ./audit.db ./auditsink.yaml events.jsonl
  tail -f app.jsonl | auditsink emit ./auditsink.yaml`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eventsPath := "-"
			if len(args) == 2 {
				eventsPath = args[1]
			}
			return runEmit(opts, args[0], eventsPath, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides connection_string)")

	return cmd
}

func runEmit(opts *EmitOptions, path, eventsPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := loadSinkConfig(path, formatter)
	if err != nil {
		return err
	}

	input := cmd.InOrStdin()
	if eventsPath != "-" {
		file, err := os.Open(eventsPath)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInput, fmt.Sprintf("cannot read events: %s", eventsPath), err)
		}
		defer file.Close()
		input = file
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

	as, err := newSink(st, cfg.Options, cfg.Settings, logger)
	if err != nil {
		return sinkFailure(err, formatter)
	}
	defer as.Close()

	result := EmitResult{
		Schema: as.Options().SchemaName,
		Table:  as.Options().TableName,
	}

	dec := logevent.NewDecoder(input)
	for {
		evt, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeInput,
				fmt.Sprintf("invalid event after %d emitted", result.Emitted), err)
		}
		if err := as.Emit(evt); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeEmit,
				fmt.Sprintf("emit failed at line %d after %d emitted", dec.Line(), result.Emitted), err)
		}
		result.Emitted++
		logger.Debug("event emitted", "line", dec.Line(), "level", evt.Level)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Emitted %d event(s) to %s.%s\n", result.Emitted, result.Schema, result.Table)
	return nil
}
