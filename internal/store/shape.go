package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/auditsink/internal/columns"
	"github.com/roach88/auditsink/internal/sink"
)

// ErrShapeReleased is returned when a released shape is used again.
var ErrShapeReleased = errors.New("table shape already released")

// Shape is the in-memory column layout of a table about to be created.
type Shape struct {
	mu       sync.Mutex
	table    string
	cols     []columns.Column
	released bool
}

var _ sink.Shape = (*Shape)(nil)

// TableName returns the table the shape describes.
func (s *Shape) TableName() string {
	return s.table
}

// Columns returns the columns in table order, or nil once released.
func (s *Shape) Columns() []columns.Column {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	out := make([]columns.Column, len(s.cols))
	copy(out, s.cols)
	return out
}

// Close releases the column layout. Closing twice is an error.
func (s *Shape) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrShapeReleased
	}
	s.released = true
	s.cols = nil
	return nil
}

// ShapeBuilder builds shapes from column options.
type ShapeBuilder struct{}

var _ sink.ShapeBuilder = ShapeBuilder{}

// BuildShape finalizes cols if needed and captures their layout.
func (ShapeBuilder) BuildShape(tableName string, cols *columns.Options) (sink.Shape, error) {
	if cols == nil {
		return nil, errors.New("build shape: no column options")
	}
	if err := cols.Finalize(); err != nil {
		return nil, fmt.Errorf("build shape: %w", err)
	}
	resolved := cols.Resolved()
	if len(resolved.Columns()) == 0 {
		return nil, fmt.Errorf("build shape: table %q has no columns", tableName)
	}
	return &Shape{table: tableName, cols: resolved.Columns()}, nil
}
