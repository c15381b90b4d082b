// Package logevent defines the structured log event accepted by the audit sink.
//
// An Event carries a message template plus the property values captured when
// it was logged. Rendering a template substitutes property values into the
// template text; numbers are formatted with a locale-aware printer so the
// rendered message matches the format provider configured on the sink.
//
// # Template Syntax
//
//	{Name}         property value (strings are quoted)
//	{Name:l}       literal string value, no quotes
//	{Name:format}  value formatted with a fmt verb, e.g. {Elapsed:%.2f}
//	{@Name}        structured (JSON-like) rendering
//	{$Name}        stringified rendering
//	{{ and }}      literal braces
package logevent
