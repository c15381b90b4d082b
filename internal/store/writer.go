package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/auditsink/internal/logevent"
	"github.com/roach88/auditsink/internal/render"
	"github.com/roach88/auditsink/internal/sink"
)

// EventWriter inserts one row per event.
//
// Each WriteEvent is a single autocommit INSERT; it returns once SQLite has
// committed the row or reported the failure. Concurrent calls are serialized
// by the store's single connection.
type EventWriter struct {
	store     *Store
	mapper    *render.Mapper
	schema    string
	table     string
	insertSQL string
	timeout   time.Duration
}

var _ sink.EventWriter = (*EventWriter)(nil)

// NewEventWriter prepares a writer for schema.table using mapper's columns.
func NewEventWriter(st *Store, mapper *render.Mapper, schema, table string, timeout time.Duration) *EventWriter {
	return &EventWriter{
		store:     st,
		mapper:    mapper,
		schema:    schema,
		table:     table,
		insertSQL: InsertSQL(schema, table, mapper.Columns()),
		timeout:   timeout,
	}
}

// WriteEvent maps e to row values and inserts them.
func (w *EventWriter) WriteEvent(e *logevent.Event) error {
	values, err := w.mapper.Map(e)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if _, err := w.store.db.ExecContext(ctx, w.insertSQL, values...); err != nil {
		return fmt.Errorf("write event to %s.%s: %w", w.schema, w.table, err)
	}
	return nil
}
