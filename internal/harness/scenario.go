package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/auditsink/internal/config"
	"github.com/roach88/auditsink/internal/logevent"
)

// Scenario defines an audit sink test scenario: a configuration, the events
// to emit through it, and assertions over the outcome and the stored rows.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the sink configuration. connection_string is ignored:
	// scenarios always run in memory.
	Config config.File `yaml:"config"`

	// Setup contains SQL statements executed before the sink is built.
	Setup []string `yaml:"setup,omitempty"`

	// Events are emitted in order once the sink is built.
	Events []EventStep `yaml:"events,omitempty"`

	// Assertions validate the outcome and the final table.
	Assertions []Assertion `yaml:"assertions"`
}

// EventStep is one event to emit.
type EventStep struct {
	// Timestamp is RFC 3339. Empty means the next deterministic clock tick.
	Timestamp string `yaml:"timestamp,omitempty"`

	// Level defaults to Information.
	Level *logevent.Level `yaml:"level,omitempty"`

	MessageTemplate string         `yaml:"message_template"`
	Properties      map[string]any `yaml:"properties,omitempty"`
	Exception       string         `yaml:"exception,omitempty"`
	TraceID         string         `yaml:"trace_id,omitempty"`
	SpanID          string         `yaml:"span_id,omitempty"`

	// ExpectError marks an emission that must fail.
	ExpectError bool `yaml:"expect_error,omitempty"`
}

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type specifies the assertion type:
	// - "row_count": table holds exactly Count rows
	// - "column_equals": Column of row Row equals Value
	// - "emit_fails": event Event failed, optionally containing Contains
	// - "construct_fails": construction failed, optionally with Code
	// - "table_exists": Table (or the configured table) exists
	Type string `yaml:"type"`

	// Count is the expected number of rows (row_count).
	Count int `yaml:"count,omitempty"`

	// Row is the 1-based row in insertion order (column_equals).
	Row int `yaml:"row,omitempty"`

	// Column is the column name (column_equals).
	Column string `yaml:"column,omitempty"`

	// Value is the expected column value; null expects NULL (column_equals).
	Value any `yaml:"value,omitempty"`

	// Event is the 1-based event index (emit_fails).
	Event int `yaml:"event,omitempty"`

	// Contains is a substring the error must contain (emit_fails,
	// construct_fails).
	Contains string `yaml:"contains,omitempty"`

	// Code is the expected configuration error code (construct_fails).
	Code string `yaml:"code,omitempty"`

	// Table overrides the configured table (table_exists).
	Table string `yaml:"table,omitempty"`
}

// Assertion type constants.
const (
	AssertRowCount       = "row_count"
	AssertColumnEquals   = "column_equals"
	AssertEmitFails      = "emit_fails"
	AssertConstructFails = "construct_fails"
	AssertTableExists    = "table_exists"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if err := s.Config.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	for i, stmt := range s.Setup {
		if stmt == "" {
			return fmt.Errorf("setup[%d]: statement is empty", i)
		}
	}

	for i, ev := range s.Events {
		if ev.Timestamp != "" {
			if _, err := time.Parse(time.RFC3339Nano, ev.Timestamp); err != nil {
				return fmt.Errorf("events[%d]: timestamp: %w", i, err)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, len(s.Events)); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, events int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRowCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	case AssertColumnEquals:
		if a.Row < 1 {
			return fmt.Errorf("assertions[%d]: row must be at least 1 for column_equals", index)
		}
		if a.Column == "" {
			return fmt.Errorf("assertions[%d]: column is required for column_equals", index)
		}
	case AssertEmitFails:
		if a.Event < 1 || a.Event > events {
			return fmt.Errorf("assertions[%d]: event must be between 1 and %d for emit_fails", index, events)
		}
	case AssertConstructFails, AssertTableExists:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
