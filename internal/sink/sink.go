package sink

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/roach88/auditsink/internal/columns"
	"github.com/roach88/auditsink/internal/logevent"
)

// EventSink is the consumer-facing contract of a log sink.
type EventSink interface {
	Emit(e *logevent.Event) error
	Close() error
}

// AuditSink writes every event synchronously through its EventWriter.
type AuditSink struct {
	opts     Options
	resolved *columns.Resolved
	writer   EventWriter
	logger   *slog.Logger
}

var _ EventSink = (*AuditSink)(nil)

// New validates the configuration, resolves the collaborators through
// factory and, when opts.AutoCreateTable is set, provisions the table.
//
// Every failure is returned before the sink exists: a *ConfigError for an
// invalid configuration or an unusable bundle, a *ProvisionError for a
// failed auto-create.
func New(opts Options, factory DependencyFactory, settings ...Setting) (*AuditSink, error) {
	cfg := newSettings(settings)
	opts, resolved, err := prepare(opts, cfg)
	if err != nil {
		return nil, err
	}

	if factory == nil {
		return nil, newConfigError(ErrCodeMissingDependencies, "no dependency factory", nil)
	}
	deps, err := factory.Create(Target{
		Options:   opts,
		Columns:   cfg.columns,
		Locale:    cfg.locale,
		Formatter: cfg.formatter,
		Logger:    cfg.logger,
	})
	if err != nil {
		return nil, newConfigError(ErrCodeUnresolvedDependencies, "resolve dependencies", err)
	}
	if err := validateDependencies(opts, deps); err != nil {
		return nil, err
	}

	if opts.AutoCreateTable {
		if err := provision(opts, cfg.columns, deps, cfg.logger); err != nil {
			return nil, err
		}
	}

	cfg.logger.Debug("audit sink ready",
		"schema", opts.SchemaName,
		"table", opts.TableName,
		"columns", len(resolved.Columns()),
		"auto_create", opts.AutoCreateTable)

	return &AuditSink{
		opts:     opts,
		resolved: resolved,
		writer:   deps.Writer,
		logger:   cfg.logger,
	}, nil
}

// Validate runs the configuration checks of New without resolving any
// collaborator. It returns the options with defaults applied and the
// finalized columns.
func Validate(opts Options, settings ...Setting) (Options, *columns.Resolved, error) {
	return prepare(opts, newSettings(settings))
}

func prepare(opts Options, cfg *settings) (Options, *columns.Resolved, error) {
	opts = opts.withDefaults()

	if strings.TrimSpace(opts.TableName) == "" {
		return opts, nil, newConfigError(ErrCodeMissingTableName, "table name must not be empty", nil)
	}

	if err := cfg.columns.Finalize(); err != nil {
		return opts, nil, newConfigError(ErrCodeInvalidColumns, "column options are invalid", err)
	}
	resolved := cfg.columns.Resolved()
	if resolved.DisableTriggers() {
		return opts, nil, newConfigError(ErrCodeTriggersDisabled, "audit sink does not support disabling triggers", nil)
	}
	return opts, resolved, nil
}

func validateDependencies(opts Options, deps *Dependencies) error {
	if deps == nil {
		return newConfigError(ErrCodeMissingDependencies, "dependency factory returned no bundle", nil)
	}
	if deps.Writer == nil {
		return newConfigError(ErrCodeMissingWriter, "dependency bundle has no event writer", nil)
	}
	if opts.AutoCreateTable {
		if deps.ShapeBuilder == nil {
			return newConfigError(ErrCodeMissingProvisioner, "auto-create requires a shape builder", nil)
		}
		if deps.TableCreator == nil {
			return newConfigError(ErrCodeMissingProvisioner, "auto-create requires a table creator", nil)
		}
	}
	return nil
}

// provision builds the table shape and hands it to the creator. The shape is
// released on every path once it exists.
func provision(opts Options, cols *columns.Options, deps *Dependencies, logger *slog.Logger) (err error) {
	shape, err := deps.ShapeBuilder.BuildShape(opts.TableName, cols)
	if err != nil {
		return &ProvisionError{Stage: StageBuildShape, Schema: opts.SchemaName, Table: opts.TableName, Err: err}
	}
	if shape == nil {
		return &ProvisionError{Stage: StageBuildShape, Schema: opts.SchemaName, Table: opts.TableName,
			Err: errors.New("shape builder returned no shape")}
	}
	defer func() {
		if closeErr := shape.Close(); closeErr != nil {
			err = errors.Join(err, &ProvisionError{Stage: StageReleaseShape, Schema: opts.SchemaName, Table: opts.TableName, Err: closeErr})
		}
	}()

	if err := deps.TableCreator.CreateTable(opts.SchemaName, opts.TableName, shape, cols); err != nil {
		return &ProvisionError{Stage: StageCreateTable, Schema: opts.SchemaName, Table: opts.TableName, Err: err}
	}

	logger.Debug("table provisioned", "schema", opts.SchemaName, "table", opts.TableName)
	return nil
}

// Emit writes e and returns once the writer has finished. The writer's error
// is returned as is.
func (s *AuditSink) Emit(e *logevent.Event) error {
	return s.writer.WriteEvent(e)
}

// Close releases nothing: the sink owns no resources. It is safe to call any
// number of times, and Emit keeps working after it.
func (s *AuditSink) Close() error {
	return nil
}

// Options returns the configuration with defaults applied.
func (s *AuditSink) Options() Options {
	return s.opts
}

// Columns returns the finalized column layout.
func (s *AuditSink) Columns() *columns.Resolved {
	return s.resolved
}
