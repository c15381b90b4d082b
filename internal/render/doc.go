// Package render turns log events into column values.
//
// A Mapper is built from a finalized column configuration and produces one
// value per insertable column, in column order. The Properties column is
// rendered as XML and the LogEvent column through a Formatter, JSON by
// default.
package render
