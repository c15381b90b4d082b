package logevent

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Event is a single structured log event.
type Event struct {
	// Timestamp is when the event was logged.
	Timestamp time.Time

	// Level is the event severity.
	Level Level

	// MessageTemplate is the unrendered template, e.g. "User {UserId} signed in".
	MessageTemplate string

	// Properties holds the values captured with the event, keyed by name.
	Properties map[string]any

	// Exception is the optional error associated with the event.
	Exception error

	// TraceID and SpanID correlate the event with a distributed trace.
	TraceID string
	SpanID  string
}

// Property returns the named property value.
func (e *Event) Property(name string) (any, bool) {
	if e == nil || e.Properties == nil {
		return nil, false
	}
	v, ok := e.Properties[name]
	return v, ok
}

// ExceptionText returns the exception message, or "" when there is none.
func (e *Event) ExceptionText() string {
	if e == nil || e.Exception == nil {
		return ""
	}
	return e.Exception.Error()
}

// RenderMessage renders the message template with the event's properties.
// A nil printer renders with the undetermined locale.
func (e *Event) RenderMessage(p *message.Printer) string {
	if e == nil {
		return ""
	}
	if p == nil {
		p = NewPrinter(language.Und)
	}
	return Render(e.MessageTemplate, e.Properties, p)
}

// NewPrinter returns a message printer for the given locale.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}
