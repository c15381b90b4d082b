package sink

import (
	"io"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"github.com/roach88/auditsink/internal/columns"
	"github.com/roach88/auditsink/internal/render"
)

const (
	// DefaultSchemaName is the SQLite main database schema.
	DefaultSchemaName = "main"

	// DefaultCommandTimeout bounds a single write or DDL statement.
	DefaultCommandTimeout = 30 * time.Second
)

// TableExistsPolicy decides what table creation does when the destination
// table already exists.
type TableExistsPolicy int

const (
	// TableExistsSkip leaves an existing table untouched.
	TableExistsSkip TableExistsPolicy = iota

	// TableExistsFail makes an existing table a provisioning failure.
	TableExistsFail
)

// String returns "skip" or "fail".
func (p TableExistsPolicy) String() string {
	switch p {
	case TableExistsSkip:
		return "skip"
	case TableExistsFail:
		return "fail"
	}
	return "unknown"
}

// Options is the immutable sink configuration.
type Options struct {
	// TableName is the destination table. Required.
	TableName string

	// SchemaName defaults to DefaultSchemaName.
	SchemaName string

	// AutoCreateTable provisions the table during construction.
	AutoCreateTable bool

	// IfTableExists applies when AutoCreateTable finds an existing table.
	IfTableExists TableExistsPolicy

	// CommandTimeout bounds each statement the collaborators execute.
	// Defaults to DefaultCommandTimeout.
	CommandTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.SchemaName == "" {
		o.SchemaName = DefaultSchemaName
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = DefaultCommandTimeout
	}
	return o
}

// Setting configures optional construction inputs.
type Setting func(*settings)

type settings struct {
	columns   *columns.Options
	locale    language.Tag
	formatter render.Formatter
	logger    *slog.Logger
}

// WithColumnOptions sets the column configuration. The sink finalizes it.
func WithColumnOptions(opts *columns.Options) Setting {
	return func(s *settings) {
		if opts != nil {
			s.columns = opts
		}
	}
}

// WithFormatProvider sets the locale used to render messages.
func WithFormatProvider(tag language.Tag) Setting {
	return func(s *settings) {
		s.locale = tag
	}
}

// WithLogEventFormatter replaces the JSON formatter of the LogEvent column.
func WithLogEventFormatter(f render.Formatter) Setting {
	return func(s *settings) {
		s.formatter = f
	}
}

// WithLogger sets the logger for construction diagnostics.
func WithLogger(logger *slog.Logger) Setting {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func newSettings(opts []Setting) *settings {
	s := &settings{
		locale: language.Und,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.columns == nil {
		s.columns = columns.New()
	}
	return s
}
