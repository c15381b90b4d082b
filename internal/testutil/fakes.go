package testutil

import (
	"errors"
	"sync"

	"github.com/roach88/auditsink/internal/columns"
	"github.com/roach88/auditsink/internal/logevent"
	"github.com/roach88/auditsink/internal/sink"
)

// Recorder records collaborator calls in the order they happen.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

// Record appends a call name.
func (r *Recorder) Record(call string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

// Calls returns a copy of the recorded call names.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// FakeWriter records every event it is asked to write.
// When Err is set, every WriteEvent returns it.
type FakeWriter struct {
	Err      error
	Recorder *Recorder

	mu     sync.Mutex
	events []*logevent.Event
}

// WriteEvent implements sink.EventWriter.
func (w *FakeWriter) WriteEvent(e *logevent.Event) error {
	w.Recorder.Record("write")
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, e)
	return w.Err
}

// Events returns the events passed to WriteEvent, failed ones included.
func (w *FakeWriter) Events() []*logevent.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*logevent.Event(nil), w.events...)
}

// FakeShape counts how often it is released.
type FakeShape struct {
	Name     string
	Cols     []columns.Column
	CloseErr error
	Recorder *Recorder

	mu     sync.Mutex
	closed int
}

// TableName implements sink.Shape.
func (s *FakeShape) TableName() string { return s.Name }

// Columns implements sink.Shape.
func (s *FakeShape) Columns() []columns.Column { return s.Cols }

// Close implements sink.Shape.
func (s *FakeShape) Close() error {
	s.Recorder.Record("release")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return s.CloseErr
}

// Closed returns the number of Close calls.
func (s *FakeShape) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// FakeShapeBuilder returns Shape, or Err when set.
type FakeShapeBuilder struct {
	Shape    *FakeShape
	Err      error
	Recorder *Recorder

	Calls     int
	TableName string
	Columns   *columns.Options
}

// BuildShape implements sink.ShapeBuilder.
func (b *FakeShapeBuilder) BuildShape(tableName string, cols *columns.Options) (sink.Shape, error) {
	b.Recorder.Record("build")
	b.Calls++
	b.TableName = tableName
	b.Columns = cols
	if b.Err != nil {
		return nil, b.Err
	}
	if b.Shape == nil {
		return nil, errors.New("fake shape builder has no shape")
	}
	return b.Shape, nil
}

// FakeCreator records the arguments of CreateTable and returns Err.
type FakeCreator struct {
	Err      error
	Recorder *Recorder

	Calls      int
	SchemaName string
	TableName  string
	Shape      sink.Shape
	Columns    *columns.Options
}

// CreateTable implements sink.TableCreator.
func (c *FakeCreator) CreateTable(schemaName, tableName string, shape sink.Shape, cols *columns.Options) error {
	c.Recorder.Record("create")
	c.Calls++
	c.SchemaName = schemaName
	c.TableName = tableName
	c.Shape = shape
	c.Columns = cols
	return c.Err
}

// FakeBundle is a complete set of recording collaborators sharing one
// Recorder.
type FakeBundle struct {
	Recorder *Recorder
	Writer   *FakeWriter
	Builder  *FakeShapeBuilder
	Shape    *FakeShape
	Creator  *FakeCreator
}

// NewFakeBundle wires a writer, shape builder, shape and creator together.
func NewFakeBundle() *FakeBundle {
	rec := &Recorder{}
	shape := &FakeShape{Recorder: rec}
	return &FakeBundle{
		Recorder: rec,
		Writer:   &FakeWriter{Recorder: rec},
		Builder:  &FakeShapeBuilder{Shape: shape, Recorder: rec},
		Shape:    shape,
		Creator:  &FakeCreator{Recorder: rec},
	}
}

// Dependencies returns the bundle as sink dependencies.
func (b *FakeBundle) Dependencies() *sink.Dependencies {
	return &sink.Dependencies{
		Writer:       b.Writer,
		ShapeBuilder: b.Builder,
		TableCreator: b.Creator,
	}
}

// Factory returns a factory that records the target and yields the bundle.
func (b *FakeBundle) Factory(target *sink.Target) sink.DependencyFactory {
	return sink.DependencyFactoryFunc(func(t sink.Target) (*sink.Dependencies, error) {
		b.Recorder.Record("resolve")
		if target != nil {
			*target = t
		}
		return b.Dependencies(), nil
	})
}
