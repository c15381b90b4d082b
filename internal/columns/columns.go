// Package columns describes how log events map onto table columns.
//
// Options is freely mutable until Finalize is called. Finalize resolves
// default names and data types, checks the configuration for consistency and
// freezes the result; the frozen view is returned by Resolved. Changes made
// to Options after Finalize have no effect on the resolved columns.
package columns

import (
	"errors"
	"sync"
)

// StandardColumn names one of the built-in columns.
type StandardColumn string

const (
	ID              StandardColumn = "Id"
	Message         StandardColumn = "Message"
	MessageTemplate StandardColumn = "MessageTemplate"
	Level           StandardColumn = "Level"
	TimeStamp       StandardColumn = "TimeStamp"
	Exception       StandardColumn = "Exception"
	Properties      StandardColumn = "Properties"
	LogEvent        StandardColumn = "LogEvent"
	TraceID         StandardColumn = "TraceId"
	SpanID          StandardColumn = "SpanId"
)

// AllStandardColumns lists every standard column in canonical order.
var AllStandardColumns = []StandardColumn{
	ID, Message, MessageTemplate, Level, TimeStamp, Exception, Properties, LogEvent, TraceID, SpanID,
}

// DefaultStore is the set of standard columns stored when Options.Store is nil.
var DefaultStore = []StandardColumn{
	ID, Message, MessageTemplate, Level, TimeStamp, Exception, Properties,
}

// DataType is a SQLite column type.
type DataType string

const (
	Text     DataType = "TEXT"
	Integer  DataType = "INTEGER"
	Real     DataType = "REAL"
	Numeric  DataType = "NUMERIC"
	Blob     DataType = "BLOB"
	Boolean  DataType = "BOOLEAN"
	DateTime DataType = "DATETIME"
)

var validDataTypes = map[DataType]bool{
	Text: true, Integer: true, Real: true, Numeric: true, Blob: true, Boolean: true, DateTime: true,
}

// Valid reports whether t is a supported data type.
func (t DataType) Valid() bool {
	return validDataTypes[t]
}

var (
	ErrUnknownStandardColumn = errors.New("unknown standard column")
	ErrDuplicateColumn       = errors.New("duplicate column")
	ErrInvalidColumn         = errors.New("invalid column")
	ErrInvalidDataType       = errors.New("invalid data type")
	ErrInvalidPrimaryKey     = errors.New("invalid primary key")
)

// SQLColumn describes an additional column populated from an event property.
type SQLColumn struct {
	// ColumnName is the table column name. Required.
	ColumnName string

	// PropertyName is the event property copied into the column.
	// Defaults to ColumnName.
	PropertyName string

	// DataType defaults to TEXT.
	DataType DataType

	// NotNull adds a NOT NULL constraint.
	NotNull bool

	// DataLength truncates TEXT values longer than this many runes (0 = unlimited).
	DataLength int
}

// IDOptions configures the Id column.
type IDOptions struct {
	ColumnName string

	// DataType is INTEGER (auto-increment) or TEXT (generated UUID).
	DataType DataType
}

// TextOptions configures a plain text standard column.
type TextOptions struct {
	ColumnName string

	// DataLength truncates values longer than this many runes (0 = unlimited).
	DataLength int
}

// LevelOptions configures the Level column.
type LevelOptions struct {
	ColumnName string

	// StoreAsEnum stores the numeric level instead of its name.
	StoreAsEnum bool
}

// TimeStampOptions configures the TimeStamp column.
type TimeStampOptions struct {
	ColumnName string

	// ConvertToUTC stores timestamps in UTC instead of their original offset.
	ConvertToUTC bool
}

// PropertiesOptions configures the XML Properties column.
type PropertiesOptions struct {
	ColumnName string

	RootElementName     string
	PropertyElementName string

	// UsePropertyKeyAsElementName writes <Key>v</Key> instead of
	// <property key='Key'>v</property>.
	UsePropertyKeyAsElementName bool

	// OmitElementIfEmpty skips properties whose rendered value is empty.
	OmitElementIfEmpty bool

	// ExcludeAdditionalProperties leaves out properties already stored in
	// an additional column.
	ExcludeAdditionalProperties bool
}

// LogEventOptions configures the JSON LogEvent column.
type LogEventOptions struct {
	ColumnName string

	ExcludeAdditionalProperties bool

	// ExcludeStandardColumns writes only the properties, not the
	// timestamp, level, message and exception.
	ExcludeStandardColumns bool
}

// Options is the column configuration of a sink.
type Options struct {
	// Store lists the standard columns to create and populate, in table
	// order. nil means DefaultStore; an empty non-nil slice stores none.
	Store []StandardColumn

	// AdditionalColumns are appended after the standard columns.
	AdditionalColumns []SQLColumn

	// DisableTriggers asks the writer to suppress table triggers while
	// inserting. Audit sinks reject this option.
	DisableTriggers bool

	// PrimaryKey names the primary key column. Defaults to the Id column
	// when it is stored.
	PrimaryKey string

	ID              IDOptions
	Message         TextOptions
	MessageTemplate TextOptions
	Level           LevelOptions
	TimeStamp       TimeStampOptions
	Exception       TextOptions
	Properties      PropertiesOptions
	LogEvent        LogEventOptions
	TraceID         TextOptions
	SpanID          TextOptions

	mu       sync.Mutex
	resolved *Resolved
	err      error
}

// New returns Options with the default store set.
func New() *Options {
	store := make([]StandardColumn, len(DefaultStore))
	copy(store, DefaultStore)
	return &Options{Store: store}
}

// Finalized reports whether Finalize has already run.
func (o *Options) Finalized() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resolved != nil || o.err != nil
}

// Finalize resolves and freezes the configuration. It is idempotent: the
// first call does the work and every later call returns the same result.
func (o *Options) Finalize() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.resolved != nil || o.err != nil {
		return o.err
	}
	o.resolved, o.err = resolve(o)
	if o.err != nil {
		o.resolved = nil
	}
	return o.err
}

// Resolved returns the frozen configuration, or nil before a successful
// Finalize.
func (o *Options) Resolved() *Resolved {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resolved
}
