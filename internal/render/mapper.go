package render

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/auditsink/internal/columns"
	"github.com/roach88/auditsink/internal/logevent"
)

// IDGenerator produces values for a TEXT id column.
type IDGenerator interface {
	Generate() string
}

// MapperOption configures a Mapper.
type MapperOption func(*mapperConfig)

type mapperConfig struct {
	locale    language.Tag
	formatter Formatter
	ids       IDGenerator
}

// WithLocale sets the locale used to render messages.
func WithLocale(tag language.Tag) MapperOption {
	return func(c *mapperConfig) {
		c.locale = tag
	}
}

// WithFormatter replaces the default JSON formatter for the LogEvent column.
func WithFormatter(f Formatter) MapperOption {
	return func(c *mapperConfig) {
		if f != nil {
			c.formatter = f
		}
	}
}

// WithIDGenerator sets the generator for a TEXT id column.
func WithIDGenerator(g IDGenerator) MapperOption {
	return func(c *mapperConfig) {
		c.ids = g
	}
}

// Mapper converts events into row values for a finalized column set.
// It holds no per-event state and is safe for concurrent use.
type Mapper struct {
	resolved  *columns.Resolved
	cols      []columns.Column
	printer   *message.Printer
	formatter Formatter
	ids       IDGenerator
	exclude   map[string]bool
}

// NewMapper builds a mapper for resolved columns.
func NewMapper(resolved *columns.Resolved, opts ...MapperOption) (*Mapper, error) {
	if resolved == nil {
		return nil, errors.New("new mapper: column options are not finalized")
	}
	cfg := &mapperConfig{locale: language.Und}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Mapper{
		resolved: resolved,
		cols:     resolved.InsertColumns(),
		printer:  logevent.NewPrinter(cfg.locale),
		ids:      cfg.ids,
		exclude:  resolved.AdditionalPropertyNames(),
	}

	if id, ok := resolved.Standard(columns.ID); ok && !id.AutoIncrement && m.ids == nil {
		return nil, fmt.Errorf("new mapper: column %q needs an id generator", id.Name)
	}

	m.formatter = cfg.formatter
	if m.formatter == nil {
		m.formatter = &JSONFormatter{
			Printer:      m.printer,
			Options:      resolved.LogEvent(),
			Exclude:      m.exclude,
			ConvertToUTC: resolved.TimeStamp().ConvertToUTC,
		}
	}
	return m, nil
}

// Columns returns the columns Map produces values for, in order.
func (m *Mapper) Columns() []columns.Column {
	out := make([]columns.Column, len(m.cols))
	copy(out, m.cols)
	return out
}

// Map returns one value per column in Columns order.
func (m *Mapper) Map(e *logevent.Event) ([]any, error) {
	if e == nil {
		return nil, errors.New("map event: nil event")
	}
	values := make([]any, len(m.cols))
	for i, col := range m.cols {
		v, err := m.value(col, e)
		if err != nil {
			return nil, fmt.Errorf("map column %q: %w", col.Name, err)
		}
		values[i] = v
	}
	return values, nil
}

func (m *Mapper) value(col columns.Column, e *logevent.Event) (any, error) {
	switch col.Standard {
	case columns.ID:
		return m.ids.Generate(), nil
	case columns.Message:
		return Truncate(e.RenderMessage(m.printer), col.DataLength), nil
	case columns.MessageTemplate:
		return Truncate(e.MessageTemplate, col.DataLength), nil
	case columns.Level:
		if m.resolved.Level().StoreAsEnum {
			return int64(e.Level), nil
		}
		return e.Level.String(), nil
	case columns.TimeStamp:
		ts := e.Timestamp
		if m.resolved.TimeStamp().ConvertToUTC {
			ts = ts.UTC()
		}
		return ts.Format(time.RFC3339Nano), nil
	case columns.Exception:
		if e.Exception == nil {
			return nil, nil
		}
		return Truncate(e.Exception.Error(), col.DataLength), nil
	case columns.Properties:
		return PropertiesXML(e.Properties, m.resolved.Properties(), m.exclude), nil
	case columns.LogEvent:
		var b strings.Builder
		if err := m.formatter.Format(&b, e); err != nil {
			return nil, err
		}
		return b.String(), nil
	case columns.TraceID:
		return nullIfEmpty(e.TraceID), nil
	case columns.SpanID:
		return nullIfEmpty(e.SpanID), nil
	case "":
		v, ok := e.Property(col.PropertyName)
		if !ok || v == nil {
			return nil, nil
		}
		return convert(v, col)
	default:
		return nil, fmt.Errorf("unsupported standard column %q", col.Standard)
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// convert coerces a property value to the column's data type.
func convert(v any, col columns.Column) (any, error) {
	switch col.DataType {
	case columns.Text:
		return Truncate(scalarText(v), col.DataLength), nil
	case columns.Integer:
		return toInt64(v)
	case columns.Real, columns.Numeric:
		return toFloat64(v)
	case columns.Boolean:
		return toBool(v)
	case columns.DateTime:
		switch val := v.(type) {
		case time.Time:
			return val.Format(time.RFC3339Nano), nil
		case string:
			return val, nil
		}
		return nil, fmt.Errorf("cannot convert %T to %s", v, col.DataType)
	case columns.Blob:
		switch val := v.(type) {
		case []byte:
			return val, nil
		case string:
			return []byte(val), nil
		}
		return nil, fmt.Errorf("cannot convert %T to %s", v, col.DataType)
	}
	return nil, fmt.Errorf("unsupported data type %q", col.DataType)
}

// maxInt64Float is 2^63, the smallest float64 above math.MaxInt64.
const maxInt64Float = 1 << 63

func toInt64(v any) (int64, error) {
	switch val := v.(type) {
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows INTEGER", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%v is not an integer", f)
		}
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("%v is not an integer", f)
		}
		if f < math.MinInt64 || f >= maxInt64Float {
			return 0, fmt.Errorf("%v overflows INTEGER", f)
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("cannot convert %T to INTEGER", v)
}

func toFloat64(v any) (float64, error) {
	if s, ok := v.(string); ok {
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	}
	return 0, fmt.Errorf("cannot convert %T to REAL", v)
}

func toBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(val))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, nil
	}
	return false, fmt.Errorf("cannot convert %T to BOOLEAN", v)
}
