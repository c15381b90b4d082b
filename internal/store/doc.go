// Package store provides the SQLite collaborators of the audit sink.
//
// It supplies everything sink.New resolves through its DependencyFactory:
//   - EventWriter: one INSERT per event, committed before WriteEvent returns
//   - ShapeBuilder: the in-memory table shape built from finalized columns
//   - TableCreator: CREATE TABLE for that shape, honoring TableExistsPolicy
//
// # Database Configuration
//
// Open applies:
//   - WAL mode: concurrent reads during writes
//   - synchronous=FULL: every committed audit row survives power loss
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// A Store built with Wrap around a caller's *sql.DB applies nothing and
// never closes it.
package store
