package columns

import (
	"fmt"
	"strings"
)

// Column is a fully resolved table column.
type Column struct {
	// Name is the column name in the table.
	Name string

	// Standard is the standard column this is, or "" for additional columns.
	Standard StandardColumn

	// PropertyName is the event property feeding an additional column.
	PropertyName string

	DataType      DataType
	NotNull       bool
	DataLength    int
	PrimaryKey    bool
	AutoIncrement bool
}

// IsStandard reports whether c is a standard column.
func (c Column) IsStandard() bool {
	return c.Standard != ""
}

// Resolved is the frozen result of Finalize.
type Resolved struct {
	columns         []Column
	disableTriggers bool
	primaryKey      string
	level           LevelOptions
	timeStamp       TimeStampOptions
	properties      PropertiesOptions
	logEvent        LogEventOptions
}

// Columns returns every column in table order.
func (r *Resolved) Columns() []Column {
	out := make([]Column, len(r.columns))
	copy(out, r.columns)
	return out
}

// InsertColumns returns the columns a writer supplies values for, i.e. every
// column except an auto-increment id.
func (r *Resolved) InsertColumns() []Column {
	out := make([]Column, 0, len(r.columns))
	for _, c := range r.columns {
		if !c.AutoIncrement {
			out = append(out, c)
		}
	}
	return out
}

// Standard returns the resolved standard column, if it is stored.
func (r *Resolved) Standard(std StandardColumn) (Column, bool) {
	for _, c := range r.columns {
		if c.Standard == std {
			return c, true
		}
	}
	return Column{}, false
}

// AdditionalPropertyNames returns the set of properties stored in additional
// columns.
func (r *Resolved) AdditionalPropertyNames() map[string]bool {
	names := make(map[string]bool)
	for _, c := range r.columns {
		if !c.IsStandard() {
			names[c.PropertyName] = true
		}
	}
	return names
}

// DisableTriggers reports whether the table is created without triggers.
func (r *Resolved) DisableTriggers() bool { return r.disableTriggers }

// PrimaryKey returns the name of the primary key column, or "" when the
// table has none.
func (r *Resolved) PrimaryKey() string { return r.primaryKey }

// Level returns the options of the Level column.
func (r *Resolved) Level() LevelOptions { return r.level }

// TimeStamp returns the options of the TimeStamp column.
func (r *Resolved) TimeStamp() TimeStampOptions { return r.timeStamp }

// Properties returns the Properties column options with default element
// names filled in.
func (r *Resolved) Properties() PropertiesOptions { return r.properties }

// LogEvent returns the options of the LogEvent column.
func (r *Resolved) LogEvent() LogEventOptions { return r.logEvent }

func resolve(o *Options) (*Resolved, error) {
	store := o.Store
	if store == nil {
		store = DefaultStore
	}

	r := &Resolved{
		disableTriggers: o.DisableTriggers,
		level:           o.Level,
		timeStamp:       o.TimeStamp,
		properties:      o.Properties,
		logEvent:        o.LogEvent,
	}
	if r.properties.RootElementName == "" {
		r.properties.RootElementName = "properties"
	}
	if r.properties.PropertyElementName == "" {
		r.properties.PropertyElementName = "property"
	}

	seenStd := make(map[StandardColumn]bool, len(store))
	for _, std := range store {
		if seenStd[std] {
			return nil, fmt.Errorf("%w: standard column %q listed twice", ErrDuplicateColumn, std)
		}
		seenStd[std] = true

		col, err := resolveStandard(o, std)
		if err != nil {
			return nil, err
		}
		r.columns = append(r.columns, col)
	}

	for i, add := range o.AdditionalColumns {
		name := strings.TrimSpace(add.ColumnName)
		if name == "" {
			return nil, fmt.Errorf("%w: additional column %d has no name", ErrInvalidColumn, i)
		}
		dt := add.DataType
		if dt == "" {
			dt = Text
		}
		if !dt.Valid() {
			return nil, fmt.Errorf("%w: %q for column %q", ErrInvalidDataType, add.DataType, name)
		}
		if add.DataLength < 0 {
			return nil, fmt.Errorf("%w: column %q has negative data length", ErrInvalidColumn, name)
		}
		prop := add.PropertyName
		if prop == "" {
			prop = name
		}
		r.columns = append(r.columns, Column{
			Name:         name,
			PropertyName: prop,
			DataType:     dt,
			NotNull:      add.NotNull,
			DataLength:   add.DataLength,
		})
	}

	seenName := make(map[string]bool, len(r.columns))
	for _, c := range r.columns {
		key := strings.ToLower(c.Name)
		if seenName[key] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		seenName[key] = true
	}

	if err := resolvePrimaryKey(o, r); err != nil {
		return nil, err
	}
	return r, nil
}

func resolveStandard(o *Options, std StandardColumn) (Column, error) {
	col := Column{Standard: std, DataType: Text}

	var name string
	var length int
	switch std {
	case ID:
		name = o.ID.ColumnName
		col.NotNull = true
		switch o.ID.DataType {
		case "", Integer:
			col.DataType = Integer
			col.AutoIncrement = true
		case Text:
			col.DataType = Text
		default:
			return Column{}, fmt.Errorf("%w: id column must be INTEGER or TEXT, got %q", ErrInvalidDataType, o.ID.DataType)
		}
	case Message:
		name, length = o.Message.ColumnName, o.Message.DataLength
	case MessageTemplate:
		name, length = o.MessageTemplate.ColumnName, o.MessageTemplate.DataLength
	case Exception:
		name, length = o.Exception.ColumnName, o.Exception.DataLength
	case Level:
		name = o.Level.ColumnName
		if o.Level.StoreAsEnum {
			col.DataType = Integer
		}
	case TimeStamp:
		name = o.TimeStamp.ColumnName
		col.DataType = DateTime
		col.NotNull = true
	case Properties:
		name = o.Properties.ColumnName
	case LogEvent:
		name = o.LogEvent.ColumnName
	case TraceID:
		name = o.TraceID.ColumnName
	case SpanID:
		name = o.SpanID.ColumnName
	default:
		return Column{}, fmt.Errorf("%w: %q", ErrUnknownStandardColumn, std)
	}

	if length < 0 {
		return Column{}, fmt.Errorf("%w: column %q has negative data length", ErrInvalidColumn, std)
	}
	col.DataLength = length
	col.Name = strings.TrimSpace(name)
	if col.Name == "" {
		col.Name = string(std)
	}
	return col, nil
}

func resolvePrimaryKey(o *Options, r *Resolved) error {
	pk := strings.TrimSpace(o.PrimaryKey)
	idCol, hasID := r.Standard(ID)

	if pk == "" {
		if !hasID {
			return nil
		}
		pk = idCol.Name
	}

	idx := -1
	for i, c := range r.columns {
		if strings.EqualFold(c.Name, pk) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %q is not a stored column", ErrInvalidPrimaryKey, pk)
	}
	if hasID && idCol.AutoIncrement && r.columns[idx].Standard != ID {
		return fmt.Errorf("%w: auto-increment id column %q must be the primary key", ErrInvalidPrimaryKey, idCol.Name)
	}

	r.columns[idx].PrimaryKey = true
	r.columns[idx].NotNull = true
	r.primaryKey = r.columns[idx].Name
	return nil
}
