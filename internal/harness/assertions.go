package harness

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/roach88/auditsink/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// AssertionContext provides access to the store for table assertions.
type AssertionContext struct {
	Store  *store.Store
	Ctx    context.Context
	Schema string
	Table  string
}

// EvaluateAssertions runs all assertions and returns failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertRowCount:
		return assertRowCount(result, a)
	case AssertColumnEquals:
		return assertColumnEquals(result, a)
	case AssertEmitFails:
		return assertEmitFails(result, a)
	case AssertConstructFails:
		return assertConstructFails(result, a)
	case AssertTableExists:
		return assertTableExists(actx, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertRowCount(result *Result, a Assertion) error {
	if len(result.Rows) != a.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d rows", a.Count),
			Actual:   fmt.Sprintf("%d rows", len(result.Rows)),
		}
	}
	return nil
}

func assertColumnEquals(result *Result, a Assertion) error {
	if a.Row > len(result.Rows) {
		return &AssertionError{
			Type:     AssertColumnEquals,
			Expected: fmt.Sprintf("row %d", a.Row),
			Actual:   fmt.Sprintf("%d rows", len(result.Rows)),
		}
	}
	row := result.Rows[a.Row-1]

	actual, ok := lookupColumn(row, a.Column)
	if !ok {
		return &AssertionError{
			Type:     AssertColumnEquals,
			Expected: fmt.Sprintf("column %q to exist", a.Column),
			Actual:   fmt.Sprintf("columns %v", result.Columns),
		}
	}
	if !valuesEqual(a.Value, actual) {
		return &AssertionError{
			Type:     AssertColumnEquals,
			Expected: fmt.Sprintf("row %d %s = %v (type %T)", a.Row, a.Column, a.Value, a.Value),
			Actual:   fmt.Sprintf("row %d %s = %v (type %T)", a.Row, a.Column, actual, actual),
		}
	}
	return nil
}

// lookupColumn finds a column by name. SQLite column names compare
// case-insensitively.
func lookupColumn(row map[string]any, name string) (any, bool) {
	if v, ok := row[name]; ok {
		return v, true
	}
	for k, v := range row {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func assertEmitFails(result *Result, a Assertion) error {
	outcome, ok := result.Emit(a.Event)
	if !ok {
		return &AssertionError{
			Type:     AssertEmitFails,
			Expected: fmt.Sprintf("event %d to be emitted", a.Event),
			Actual:   "not emitted",
		}
	}
	if outcome.Error == "" {
		return &AssertionError{
			Type:     AssertEmitFails,
			Expected: fmt.Sprintf("event %d to fail", a.Event),
			Actual:   "emit succeeded",
		}
	}
	if a.Contains != "" && !strings.Contains(outcome.Error, a.Contains) {
		return &AssertionError{
			Type:     AssertEmitFails,
			Expected: fmt.Sprintf("error containing %q", a.Contains),
			Actual:   outcome.Error,
		}
	}
	return nil
}

func assertConstructFails(result *Result, a Assertion) error {
	if result.Constructed {
		return &AssertionError{
			Type:     AssertConstructFails,
			Expected: "construction to fail",
			Actual:   "sink constructed",
		}
	}
	if a.Code != "" && a.Code != result.ConstructCode {
		return &AssertionError{
			Type:     AssertConstructFails,
			Expected: fmt.Sprintf("code %s", a.Code),
			Actual:   fmt.Sprintf("code %q: %s", result.ConstructCode, result.ConstructError),
		}
	}
	if a.Contains != "" && !strings.Contains(result.ConstructError, a.Contains) {
		return &AssertionError{
			Type:     AssertConstructFails,
			Expected: fmt.Sprintf("error containing %q", a.Contains),
			Actual:   result.ConstructError,
		}
	}
	return nil
}

func assertTableExists(actx *AssertionContext, a Assertion) error {
	table := a.Table
	if table == "" {
		table = actx.Table
	}
	exists, err := actx.Store.TableExists(actx.Ctx, actx.Schema, table)
	if err != nil {
		return err
	}
	if !exists {
		return &AssertionError{
			Type:     AssertTableExists,
			Expected: fmt.Sprintf("table %s.%s", actx.Schema, table),
			Actual:   "not found",
		}
	}
	return nil
}

// valuesEqual compares a YAML-decoded expectation with a SQLite value.
// Numbers compare by value across int and float types; timestamps compare
// by their RFC 3339 text.
func valuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if ef, ok := toFloat(expected); ok {
		if af, ok := toFloat(actual); ok {
			return ef == af || math.Abs(ef-af) < 1e-9
		}
	}

	switch a := actual.(type) {
	case time.Time:
		if es, ok := expected.(string); ok {
			et, err := time.Parse(time.RFC3339Nano, es)
			return err == nil && et.Equal(a)
		}
	case bool:
		eb, ok := expected.(bool)
		return ok && eb == a
	}

	return fmt.Sprint(expected) == fmt.Sprint(actual)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
