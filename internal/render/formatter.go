package render

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/text/message"

	"github.com/roach88/auditsink/internal/columns"
	"github.com/roach88/auditsink/internal/logevent"
)

// Formatter writes the textual form of an event stored in the LogEvent
// column.
type Formatter interface {
	Format(w io.Writer, e *logevent.Event) error
}

// FormatterFunc adapts a function to the Formatter interface.
type FormatterFunc func(w io.Writer, e *logevent.Event) error

// Format calls f(w, e).
func (f FormatterFunc) Format(w io.Writer, e *logevent.Event) error {
	return f(w, e)
}

// JSONFormatter renders events as canonical JSON:
//
//	{"Exception":"...","Level":"Warning","Message":"...","MessageTemplate":"...",
//	 "Properties":{...},"TimeStamp":"2024-01-02T03:04:05Z"}
type JSONFormatter struct {
	// Printer renders the message; nil uses the undetermined locale.
	Printer *message.Printer

	// Options controls which parts of the event are written.
	Options columns.LogEventOptions

	// Exclude lists property names to leave out when
	// Options.ExcludeAdditionalProperties is set.
	Exclude map[string]bool

	// ConvertToUTC writes the timestamp in UTC.
	ConvertToUTC bool
}

// Format implements Formatter.
func (f *JSONFormatter) Format(w io.Writer, e *logevent.Event) error {
	if e == nil {
		return fmt.Errorf("format event: nil event")
	}

	props := make(map[string]any, len(e.Properties))
	for k, v := range e.Properties {
		if f.Options.ExcludeAdditionalProperties && f.Exclude[k] {
			continue
		}
		props[k] = v
	}

	doc := map[string]any{"Properties": props}
	if !f.Options.ExcludeStandardColumns {
		ts := e.Timestamp
		if f.ConvertToUTC {
			ts = ts.UTC()
		}
		doc["TimeStamp"] = ts.Format(time.RFC3339Nano)
		doc["Level"] = e.Level.String()
		doc["Message"] = e.RenderMessage(f.Printer)
		doc["MessageTemplate"] = e.MessageTemplate
		if e.Exception != nil {
			doc["Exception"] = e.Exception.Error()
		}
		if e.TraceID != "" {
			doc["TraceId"] = e.TraceID
		}
		if e.SpanID != "" {
			doc["SpanId"] = e.SpanID
		}
	}

	data, err := MarshalCanonical(doc)
	if err != nil {
		return fmt.Errorf("format event: %w", err)
	}
	_, err = w.Write(data)
	return err
}
