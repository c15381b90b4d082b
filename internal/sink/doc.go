// Package sink implements the synchronous audit sink.
//
// An AuditSink commits each log event with exactly one call into an
// EventWriter and returns only when that call has finished. A write failure
// is returned to the caller of Emit unchanged. Nothing is queued or retried,
// so an event is never considered logged until the writer has succeeded.
//
// # Construction
//
// New validates the configuration before touching any collaborator:
//
//  1. The table name must be non-empty.
//  2. Column options are finalized; disabling triggers is rejected because
//     every trigger must run with the audited write.
//  3. The DependencyFactory must yield a bundle with a writer, and, when
//     AutoCreateTable is set, a shape builder and table creator.
//
// With AutoCreateTable the table is provisioned exactly once: the shape
// builder produces an in-memory shape, the table creator uses it, and the
// shape is released whether or not creation succeeded.
//
// # Concurrency
//
// The sink adds no locking and no goroutines. Concurrent Emit calls reach the
// writer concurrently; ordering across goroutines is whatever the writer
// provides.
package sink
