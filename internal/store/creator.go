package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/auditsink/internal/columns"
	"github.com/roach88/auditsink/internal/sink"
)

// ErrTableExists is returned under TableExistsFail when the table is
// already there.
var ErrTableExists = errors.New("table already exists")

// TableCreator runs CREATE TABLE for a shape.
type TableCreator struct {
	store   *Store
	policy  sink.TableExistsPolicy
	timeout time.Duration
	logger  *slog.Logger
}

var _ sink.TableCreator = (*TableCreator)(nil)

// CreateTable checks for an existing table, applies the policy, and
// otherwise creates the table from shape.
func (c *TableCreator) CreateTable(schemaName, tableName string, shape sink.Shape, _ *columns.Options) error {
	if shape == nil {
		return errors.New("create table: no shape")
	}
	cols := shape.Columns()
	if len(cols) == 0 {
		return fmt.Errorf("create table %s.%s: shape has no columns", schemaName, tableName)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	exists, err := c.store.TableExists(ctx, schemaName, tableName)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	if exists {
		if c.policy == sink.TableExistsFail {
			return fmt.Errorf("create table %s.%s: %w", schemaName, tableName, ErrTableExists)
		}
		c.logger.Debug("table exists, skipping create", "schema", schemaName, "table", tableName)
		return nil
	}

	ddl := CreateTableSQL(schemaName, tableName, cols)
	if _, err := c.store.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s.%s: %w", schemaName, tableName, err)
	}
	c.logger.Debug("table created", "schema", schemaName, "table", tableName, "columns", len(cols))
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
