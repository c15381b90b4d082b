package logevent

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// maxLineBytes bounds a single JSON-lines record.
const maxLineBytes = 1 << 20

// wireEvent is the JSON-lines representation of an Event.
type wireEvent struct {
	Timestamp       time.Time      `json:"timestamp"`
	Level           string         `json:"level"`
	MessageTemplate string         `json:"messageTemplate"`
	Properties      map[string]any `json:"properties"`
	Exception       string         `json:"exception"`
	TraceID         string         `json:"traceId"`
	SpanID          string         `json:"spanId"`
}

// Decoder reads events from a JSON-lines stream. Blank lines are skipped.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
	now     func() time.Time
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Decoder{scanner: s, now: time.Now}
}

// Line returns the 1-based line number of the most recently decoded event.
func (d *Decoder) Line() int {
	return d.line
}

// Next decodes the next event. It returns io.EOF when the stream is exhausted.
func (d *Decoder) Next() (*Event, error) {
	for d.scanner.Scan() {
		d.line++
		raw := bytes.TrimSpace(d.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		evt, err := d.decode(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", d.line, err)
		}
		return evt, nil
	}
	if err := d.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return nil, io.EOF
}

func (d *Decoder) decode(raw []byte) (*Event, error) {
	var w wireEvent
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	level := LevelInformation
	if w.Level != "" {
		parsed, err := ParseLevel(w.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	ts := w.Timestamp
	if ts.IsZero() {
		ts = d.now()
	}

	evt := &Event{
		Timestamp:       ts,
		Level:           level,
		MessageTemplate: w.MessageTemplate,
		Properties:      normalizeNumbers(w.Properties),
		TraceID:         w.TraceID,
		SpanID:          w.SpanID,
	}
	if w.Exception != "" {
		evt.Exception = errors.New(w.Exception)
	}
	return evt, nil
}

// normalizeNumbers converts json.Number values to int64 or float64 so they
// render and store like natively captured numbers.
func normalizeNumbers(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		return normalizeNumbers(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeValue(elem)
		}
		return out
	default:
		return v
	}
}
