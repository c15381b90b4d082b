// Package config loads audit sink configuration from YAML files.
//
// A file is decoded strictly (unknown keys are errors), checked against an
// embedded CUE schema for shape and enumerations, and then converted into
// sink.Options and sink settings. Semantic rules such as a required table
// name stay with sink.New, so a file and a programmatic configuration are
// validated by the same code.
//
// Example:
//
//	connection_string: ./audit.db
//	table_name: Logs
//	auto_create_table: true
//	if_table_exists: skip
//	command_timeout: 10s
//	locale: de-DE
//	columns:
//	  store: [Id, Message, Level, TimeStamp, Exception, Properties]
//	  additional_columns:
//	    - column_name: UserName
//	      not_null: true
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/roach88/auditsink/internal/columns"
	"github.com/roach88/auditsink/internal/sink"
)

//go:embed schema.cue
var schemaCUE string

// EnvConnectionString overrides connection_string when set.
const EnvConnectionString = "AUDITSINK_CONNECTION_STRING"

// ErrInvalidConfig wraps every decoding and schema failure.
var ErrInvalidConfig = errors.New("invalid config")

// File is the YAML configuration document.
type File struct {
	ConnectionString string      `yaml:"connection_string" json:"connection_string,omitempty"`
	TableName        string      `yaml:"table_name" json:"table_name,omitempty"`
	SchemaName       string      `yaml:"schema_name" json:"schema_name,omitempty"`
	AutoCreateTable  bool        `yaml:"auto_create_table" json:"auto_create_table,omitempty"`
	IfTableExists    string      `yaml:"if_table_exists" json:"if_table_exists,omitempty"`
	CommandTimeout   string      `yaml:"command_timeout" json:"command_timeout,omitempty"`
	Locale           string      `yaml:"locale" json:"locale,omitempty"`
	Columns          ColumnsFile `yaml:"columns" json:"columns"`
}

// ColumnsFile mirrors columns.Options.
type ColumnsFile struct {
	// Store distinguishes absent (default set) from an explicit empty list.
	Store             []string         `yaml:"store" json:"store,omitempty"`
	DisableTriggers   bool             `yaml:"disable_triggers" json:"disable_triggers,omitempty"`
	PrimaryKey        string           `yaml:"primary_key" json:"primary_key,omitempty"`
	ID                IDFile           `yaml:"id" json:"id"`
	Message           TextFile         `yaml:"message" json:"message"`
	MessageTemplate   TextFile         `yaml:"message_template" json:"message_template"`
	Exception         TextFile         `yaml:"exception" json:"exception"`
	TraceID           TextFile         `yaml:"trace_id" json:"trace_id"`
	SpanID            TextFile         `yaml:"span_id" json:"span_id"`
	Level             LevelFile        `yaml:"level" json:"level"`
	TimeStamp         TimeStampFile    `yaml:"timestamp" json:"timestamp"`
	Properties        PropertiesFile   `yaml:"properties" json:"properties"`
	LogEvent          LogEventFile     `yaml:"log_event" json:"log_event"`
	AdditionalColumns []AdditionalFile `yaml:"additional_columns" json:"additional_columns,omitempty"`
}

type IDFile struct {
	ColumnName string `yaml:"column_name" json:"column_name,omitempty"`
	DataType   string `yaml:"data_type" json:"data_type,omitempty"`
}

type TextFile struct {
	ColumnName string `yaml:"column_name" json:"column_name,omitempty"`
	DataLength int    `yaml:"data_length" json:"data_length,omitempty"`
}

type LevelFile struct {
	ColumnName  string `yaml:"column_name" json:"column_name,omitempty"`
	StoreAsEnum bool   `yaml:"store_as_enum" json:"store_as_enum,omitempty"`
}

type TimeStampFile struct {
	ColumnName   string `yaml:"column_name" json:"column_name,omitempty"`
	ConvertToUTC bool   `yaml:"convert_to_utc" json:"convert_to_utc,omitempty"`
}

type PropertiesFile struct {
	ColumnName                  string `yaml:"column_name" json:"column_name,omitempty"`
	RootElementName             string `yaml:"root_element_name" json:"root_element_name,omitempty"`
	PropertyElementName         string `yaml:"property_element_name" json:"property_element_name,omitempty"`
	UsePropertyKeyAsElementName bool   `yaml:"use_property_key_as_element_name" json:"use_property_key_as_element_name,omitempty"`
	OmitElementIfEmpty          bool   `yaml:"omit_element_if_empty" json:"omit_element_if_empty,omitempty"`
	ExcludeAdditionalProperties bool   `yaml:"exclude_additional_properties" json:"exclude_additional_properties,omitempty"`
}

type LogEventFile struct {
	ColumnName                  string `yaml:"column_name" json:"column_name,omitempty"`
	ExcludeAdditionalProperties bool   `yaml:"exclude_additional_properties" json:"exclude_additional_properties,omitempty"`
	ExcludeStandardColumns      bool   `yaml:"exclude_standard_columns" json:"exclude_standard_columns,omitempty"`
}

type AdditionalFile struct {
	ColumnName   string `yaml:"column_name" json:"column_name"`
	PropertyName string `yaml:"property_name" json:"property_name,omitempty"`
	DataType     string `yaml:"data_type" json:"data_type,omitempty"`
	NotNull      bool   `yaml:"not_null" json:"not_null,omitempty"`
	DataLength   int    `yaml:"data_length" json:"data_length,omitempty"`
}

// Load reads path, parses it and applies environment overrides.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	ApplyEnv(f, os.LookupEnv)
	return f, nil
}

// Parse decodes and schema-checks a YAML document.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks f against the embedded CUE schema.
func (f *File) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	doc := ctx.Encode(f)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment through lookup.
func ApplyEnv(f *File, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvConnectionString); ok && v != "" {
		f.ConnectionString = v
	}
}

// SinkOptions converts the file into sink options.
func (f *File) SinkOptions() (sink.Options, error) {
	opts := sink.Options{
		TableName:       f.TableName,
		SchemaName:      f.SchemaName,
		AutoCreateTable: f.AutoCreateTable,
	}

	switch f.IfTableExists {
	case "", "skip":
		opts.IfTableExists = sink.TableExistsSkip
	case "fail":
		opts.IfTableExists = sink.TableExistsFail
	default:
		return sink.Options{}, fmt.Errorf("%w: if_table_exists %q", ErrInvalidConfig, f.IfTableExists)
	}

	if f.CommandTimeout != "" {
		d, err := time.ParseDuration(f.CommandTimeout)
		if err != nil {
			return sink.Options{}, fmt.Errorf("%w: command_timeout: %v", ErrInvalidConfig, err)
		}
		if d <= 0 {
			return sink.Options{}, fmt.Errorf("%w: command_timeout must be positive", ErrInvalidConfig)
		}
		opts.CommandTimeout = d
	}
	return opts, nil
}

// Language parses the locale, or returns language.Und when none is set.
func (f *File) Language() (language.Tag, error) {
	if f.Locale == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(f.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("%w: locale %q: %v", ErrInvalidConfig, f.Locale, err)
	}
	return tag, nil
}

// ColumnOptions converts the columns section. The result is not finalized.
func (f *File) ColumnOptions() *columns.Options {
	c := f.Columns
	opts := columns.New()
	if c.Store != nil {
		opts.Store = make([]columns.StandardColumn, len(c.Store))
		for i, s := range c.Store {
			opts.Store[i] = columns.StandardColumn(s)
		}
	}
	opts.DisableTriggers = c.DisableTriggers
	opts.PrimaryKey = c.PrimaryKey
	opts.ID = columns.IDOptions{ColumnName: c.ID.ColumnName, DataType: columns.DataType(c.ID.DataType)}
	opts.Message = c.Message.options()
	opts.MessageTemplate = c.MessageTemplate.options()
	opts.Exception = c.Exception.options()
	opts.TraceID = c.TraceID.options()
	opts.SpanID = c.SpanID.options()
	opts.Level = columns.LevelOptions{ColumnName: c.Level.ColumnName, StoreAsEnum: c.Level.StoreAsEnum}
	opts.TimeStamp = columns.TimeStampOptions{ColumnName: c.TimeStamp.ColumnName, ConvertToUTC: c.TimeStamp.ConvertToUTC}
	opts.Properties = columns.PropertiesOptions{
		ColumnName:                  c.Properties.ColumnName,
		RootElementName:             c.Properties.RootElementName,
		PropertyElementName:         c.Properties.PropertyElementName,
		UsePropertyKeyAsElementName: c.Properties.UsePropertyKeyAsElementName,
		OmitElementIfEmpty:          c.Properties.OmitElementIfEmpty,
		ExcludeAdditionalProperties: c.Properties.ExcludeAdditionalProperties,
	}
	opts.LogEvent = columns.LogEventOptions{
		ColumnName:                  c.LogEvent.ColumnName,
		ExcludeAdditionalProperties: c.LogEvent.ExcludeAdditionalProperties,
		ExcludeStandardColumns:      c.LogEvent.ExcludeStandardColumns,
	}
	for _, a := range c.AdditionalColumns {
		opts.AdditionalColumns = append(opts.AdditionalColumns, columns.SQLColumn{
			ColumnName:   a.ColumnName,
			PropertyName: a.PropertyName,
			DataType:     columns.DataType(a.DataType),
			NotNull:      a.NotNull,
			DataLength:   a.DataLength,
		})
	}
	return opts
}

func (t TextFile) options() columns.TextOptions {
	return columns.TextOptions{ColumnName: t.ColumnName, DataLength: t.DataLength}
}

// Settings returns the sink settings carried by the file.
func (f *File) Settings() ([]sink.Setting, error) {
	tag, err := f.Language()
	if err != nil {
		return nil, err
	}
	return []sink.Setting{
		sink.WithColumnOptions(f.ColumnOptions()),
		sink.WithFormatProvider(tag),
	}, nil
}
