package store

import "github.com/google/uuid"

// UUIDv7Generator generates time-sortable UUIDv7 row identifiers for TEXT
// Id columns.
//
// UUIDv7 embeds a millisecond timestamp in the most significant bits, so
// rows sort by insertion time when ordered by Id.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if the system random source fails, which is not recoverable.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
