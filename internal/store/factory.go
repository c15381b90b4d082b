package store

import (
	"errors"
	"fmt"

	"github.com/roach88/auditsink/internal/render"
	"github.com/roach88/auditsink/internal/sink"
)

// DependencyFactory resolves the SQLite collaborators of a sink.
type DependencyFactory struct {
	store *Store
	ids   render.IDGenerator
}

var _ sink.DependencyFactory = (*DependencyFactory)(nil)

// FactoryOption configures a DependencyFactory.
type FactoryOption func(*DependencyFactory)

// WithIDGenerator replaces UUIDv7Generator for TEXT Id columns.
func WithIDGenerator(g render.IDGenerator) FactoryOption {
	return func(f *DependencyFactory) {
		if g != nil {
			f.ids = g
		}
	}
}

// NewDependencyFactory creates a factory writing through st.
func NewDependencyFactory(st *Store, opts ...FactoryOption) *DependencyFactory {
	f := &DependencyFactory{store: st, ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds the writer, shape builder and table creator for target.
func (f *DependencyFactory) Create(target sink.Target) (*sink.Dependencies, error) {
	if f.store == nil {
		return nil, errors.New("create dependencies: no store")
	}
	if target.Columns == nil || target.Columns.Resolved() == nil {
		return nil, errors.New("create dependencies: column options are not finalized")
	}

	mapper, err := render.NewMapper(target.Columns.Resolved(),
		render.WithLocale(target.Locale),
		render.WithFormatter(target.Formatter),
		render.WithIDGenerator(f.ids),
	)
	if err != nil {
		return nil, fmt.Errorf("create dependencies: %w", err)
	}

	logger := target.Logger
	if logger == nil {
		logger = discardLogger()
	}

	opts := target.Options
	return &sink.Dependencies{
		Writer:       NewEventWriter(f.store, mapper, opts.SchemaName, opts.TableName, opts.CommandTimeout),
		ShapeBuilder: ShapeBuilder{},
		TableCreator: &TableCreator{
			store:   f.store,
			policy:  opts.IfTableExists,
			timeout: opts.CommandTimeout,
			logger:  logger,
		},
	}, nil
}
