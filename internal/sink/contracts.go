package sink

import (
	"io"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/roach88/auditsink/internal/columns"
	"github.com/roach88/auditsink/internal/logevent"
	"github.com/roach88/auditsink/internal/render"
)

// EventWriter commits one event per call.
//
// WriteEvent must block until the event is durably written or has failed,
// and must return every failure.
type EventWriter interface {
	WriteEvent(e *logevent.Event) error
}

// Shape is the in-memory description of a table built for provisioning.
// Close releases it.
type Shape interface {
	TableName() string
	Columns() []columns.Column
	io.Closer
}

// ShapeBuilder builds the in-memory shape of a table from finalized columns.
type ShapeBuilder interface {
	BuildShape(tableName string, cols *columns.Options) (Shape, error)
}

// TableCreator provisions the physical table described by shape.
// Whether an existing table is an error is decided by the creator.
type TableCreator interface {
	CreateTable(schemaName, tableName string, shape Shape, cols *columns.Options) error
}

// Dependencies is the bundle of collaborators a sink is built from.
type Dependencies struct {
	Writer       EventWriter
	ShapeBuilder ShapeBuilder
	TableCreator TableCreator
}

// Target is everything a DependencyFactory resolves collaborators from.
type Target struct {
	// Options has defaults applied.
	Options Options

	// Columns is finalized.
	Columns *columns.Options

	// Locale is the format provider for rendered messages.
	Locale language.Tag

	// Formatter is the custom LogEvent formatter, or nil.
	Formatter render.Formatter

	Logger *slog.Logger
}

// DependencyFactory resolves the collaborator bundle for a sink.
type DependencyFactory interface {
	Create(target Target) (*Dependencies, error)
}

// DependencyFactoryFunc adapts a function to DependencyFactory.
type DependencyFactoryFunc func(target Target) (*Dependencies, error)

// Create calls f(target).
func (f DependencyFactoryFunc) Create(target Target) (*Dependencies, error) {
	return f(target)
}

// StaticDependencies returns a factory that always yields deps.
func StaticDependencies(deps *Dependencies) DependencyFactory {
	return DependencyFactoryFunc(func(Target) (*Dependencies, error) {
		return deps, nil
	})
}
