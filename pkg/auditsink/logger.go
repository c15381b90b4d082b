package auditsink

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/auditsink/internal/logevent"
	"github.com/roach88/auditsink/internal/sink"
)

// EventIDProperty is the property every event is enriched with.
const EventIDProperty = "EventId"

// Logger is a synchronous front-end over a sink. Every call returns the
// sink's error for that event.
type Logger struct {
	sink  sink.EventSink
	min   Level
	now   func() time.Time
	newID func() string
	props map[string]any
}

// LoggerOption configures a Logger.
type LoggerOption func(*Logger)

// WithMinimumLevel drops events below level before they reach the sink.
func WithMinimumLevel(level Level) LoggerOption {
	return func(l *Logger) {
		l.min = level
	}
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) LoggerOption {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithEventIDs sets the generator of EventId values.
func WithEventIDs(newID func() string) LoggerOption {
	return func(l *Logger) {
		if newID != nil {
			l.newID = newID
		}
	}
}

// NewLogger returns a logger writing to s at LevelInformation and above.
func NewLogger(s sink.EventSink, opts ...LoggerOption) *Logger {
	l := &Logger{
		sink:  s,
		min:   LevelInformation,
		now:   time.Now,
		newID: newEventID,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func newEventID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ForContext returns a logger that adds name=value to every event.
func (l *Logger) ForContext(name string, value any) *Logger {
	child := *l
	child.props = maps.Clone(l.props)
	if child.props == nil {
		child.props = make(map[string]any, 1)
	}
	child.props[name] = value
	return &child
}

// Enabled reports whether events at level reach the sink.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.min
}

// Write emits one event. args bind to the template's properties in order;
// extra args are ignored and unbound properties render as written.
func (l *Logger) Write(level Level, exception error, template string, args ...any) error {
	if !l.Enabled(level) {
		return nil
	}

	props := make(map[string]any, len(l.props)+len(args)+1)
	maps.Copy(props, l.props)
	bindArgs(props, template, args)
	if _, ok := props[EventIDProperty]; !ok {
		props[EventIDProperty] = l.newID()
	}

	return l.sink.Emit(&Event{
		Timestamp:       l.now(),
		Level:           level,
		MessageTemplate: template,
		Properties:      props,
		Exception:       exception,
	})
}

// bindArgs assigns args to the template's property names, first occurrence
// first.
func bindArgs(props map[string]any, template string, args []any) {
	if len(args) == 0 {
		return
	}
	seen := make(map[string]bool)
	i := 0
	for _, tok := range logevent.Parse(template) {
		if !tok.IsProperty || seen[tok.Name] {
			continue
		}
		seen[tok.Name] = true
		props[tok.Name] = args[i]
		i++
		if i == len(args) {
			return
		}
	}
}

func (l *Logger) Verbose(template string, args ...any) error {
	return l.Write(LevelVerbose, nil, template, args...)
}

func (l *Logger) Debug(template string, args ...any) error {
	return l.Write(LevelDebug, nil, template, args...)
}

func (l *Logger) Information(template string, args ...any) error {
	return l.Write(LevelInformation, nil, template, args...)
}

func (l *Logger) Warning(template string, args ...any) error {
	return l.Write(LevelWarning, nil, template, args...)
}

// Error logs at LevelError with err stored as the exception.
func (l *Logger) Error(err error, template string, args ...any) error {
	return l.Write(LevelError, err, template, args...)
}

// Fatal logs at LevelFatal with err stored as the exception.
func (l *Logger) Fatal(err error, template string, args ...any) error {
	return l.Write(LevelFatal, err, template, args...)
}
