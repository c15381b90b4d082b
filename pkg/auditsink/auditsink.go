// Package auditsink writes structured log events to a SQLite table
// synchronously: Emit returns only after the row is committed and returns
// the write error when it is not.
//
// A sink is built over a database the caller owns:
//
//	db, err := auditsink.OpenDB("audit.db")
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	s, err := auditsink.New(db, auditsink.Options{TableName: "Logs", AutoCreateTable: true})
//	if err != nil {
//		return err
//	}
//	log := auditsink.NewLogger(s)
//	if err := log.Information("User {UserName} signed in", "ann"); err != nil {
//		// the event was not recorded
//	}
package auditsink

import (
	"database/sql"

	"golang.org/x/text/language"

	"github.com/roach88/auditsink/internal/columns"
	"github.com/roach88/auditsink/internal/logevent"
	"github.com/roach88/auditsink/internal/render"
	"github.com/roach88/auditsink/internal/sink"
	"github.com/roach88/auditsink/internal/store"
)

type (
	// Sink is a constructed audit sink.
	Sink = sink.AuditSink

	// Options configures the destination table.
	Options = sink.Options

	// Setting adjusts optional sink behavior.
	Setting = sink.Setting

	// ColumnOptions describes the table columns.
	ColumnOptions = columns.Options

	// Formatter renders the LogEvent column.
	Formatter = render.Formatter

	// Event is one structured log event.
	Event = logevent.Event

	// Level is the severity of an event.
	Level = logevent.Level
)

// Event levels, lowest first.
const (
	LevelVerbose     = logevent.LevelVerbose
	LevelDebug       = logevent.LevelDebug
	LevelInformation = logevent.LevelInformation
	LevelWarning     = logevent.LevelWarning
	LevelError       = logevent.LevelError
	LevelFatal       = logevent.LevelFatal
)

const (
	// TableExistsSkip accepts an existing table as is.
	TableExistsSkip = sink.TableExistsSkip

	// TableExistsFail makes New fail when the table already exists.
	TableExistsFail = sink.TableExistsFail
)

var (
	// IsConfigError reports whether err rejected the sink's configuration.
	IsConfigError = sink.IsConfigError

	// IsProvisionError reports whether err came from creating the table.
	IsProvisionError = sink.IsProvisionError

	// ErrTableExists is wrapped by the provisioning error when the table
	// exists and the policy is TableExistsFail.
	ErrTableExists = store.ErrTableExists
)

// Settings accepted by New.
var (
	WithColumnOptions     = sink.WithColumnOptions
	WithFormatProvider    = sink.WithFormatProvider
	WithLogEventFormatter = sink.WithLogEventFormatter
	WithLogger            = sink.WithLogger
)

// NewColumnOptions returns column options holding the default columns.
func NewColumnOptions() *ColumnOptions {
	return columns.New()
}

// OpenDB opens a SQLite database configured for audit writes. The caller
// closes it.
func OpenDB(dsn string) (*sql.DB, error) {
	st, err := store.Open(dsn)
	if err != nil {
		return nil, err
	}
	return st.DB(), nil
}

// New builds a sink writing to db. db stays owned by the caller; closing the
// sink leaves it open.
func New(db *sql.DB, opts Options, settings ...Setting) (*Sink, error) {
	factory := sink.DependencyFactoryFunc(func(target sink.Target) (*sink.Dependencies, error) {
		st, err := store.Wrap(db)
		if err != nil {
			return nil, err
		}
		return store.NewDependencyFactory(st).Create(target)
	})
	return sink.New(opts, factory, settings...)
}

// NewLegacy builds a sink from discrete arguments. columnOptions and
// logEventFormatter may be nil, schemaName may be empty.
func NewLegacy(
	db *sql.DB,
	tableName string,
	formatProvider language.Tag,
	autoCreateTable bool,
	columnOptions *ColumnOptions,
	schemaName string,
	logEventFormatter Formatter,
) (*Sink, error) {
	return New(db, Options{
		TableName:       tableName,
		SchemaName:      schemaName,
		AutoCreateTable: autoCreateTable,
	},
		WithFormatProvider(formatProvider),
		WithColumnOptions(columnOptions),
		WithLogEventFormatter(logEventFormatter),
	)
}
