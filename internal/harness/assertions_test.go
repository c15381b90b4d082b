package harness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditsink/internal/store"
)

func resultWithRows(rows ...map[string]any) *Result {
	r := NewResult()
	r.Constructed = true
	r.Rows = append(r.Rows, rows...)
	return r
}

func TestAssertRowCount(t *testing.T) {
	r := resultWithRows(map[string]any{"Message": "a"})

	assert.NoError(t, assertRowCount(r, Assertion{Count: 1}))

	err := assertRowCount(r, Assertion{Count: 2})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "2 rows", ae.Expected)
	assert.Equal(t, "1 rows", ae.Actual)
}

func TestAssertColumnEquals(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := resultWithRows(map[string]any{
		"Message":   "hello",
		"Id":        int64(7),
		"Amount":    12.5,
		"TimeStamp": ts,
		"Exception": nil,
	})

	tests := []struct {
		name   string
		column string
		value  any
		ok     bool
	}{
		{"string", "Message", "hello", true},
		{"int vs int64", "Id", 7, true},
		{"float", "Amount", 12.5, true},
		{"time as text", "TimeStamp", "2024-01-01T00:00:00Z", true},
		{"null", "Exception", nil, true},
		{"case-insensitive column", "message", "hello", true},
		{"mismatch", "Message", "bye", false},
		{"null vs value", "Message", nil, false},
		{"missing column", "Nope", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertColumnEquals(r, Assertion{Row: 1, Column: tt.column, Value: tt.value})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	assert.Error(t, assertColumnEquals(r, Assertion{Row: 2, Column: "Message", Value: "hello"}))
}

func TestAssertEmitFails(t *testing.T) {
	r := NewResult()
	r.AddEmit(1, nil)
	r.AddEmit(2, assert.AnError)

	assert.NoError(t, assertEmitFails(r, Assertion{Event: 2}))
	assert.NoError(t, assertEmitFails(r, Assertion{Event: 2, Contains: "general error"}))
	assert.Error(t, assertEmitFails(r, Assertion{Event: 2, Contains: "disk"}))
	assert.Error(t, assertEmitFails(r, Assertion{Event: 1}))
	assert.Error(t, assertEmitFails(r, Assertion{Event: 3}))
}

func TestAssertConstructFails(t *testing.T) {
	ok := resultWithRows()
	assert.Error(t, assertConstructFails(ok, Assertion{}))

	failed := NewResult()
	failed.ConstructError = "MISSING_TABLE_NAME: table name must not be empty"
	failed.ConstructCode = "MISSING_TABLE_NAME"

	assert.NoError(t, assertConstructFails(failed, Assertion{}))
	assert.NoError(t, assertConstructFails(failed, Assertion{Code: "MISSING_TABLE_NAME"}))
	assert.NoError(t, assertConstructFails(failed, Assertion{Contains: "must not be empty"}))
	assert.Error(t, assertConstructFails(failed, Assertion{Code: "MISSING_WRITER"}))
	assert.Error(t, assertConstructFails(failed, Assertion{Contains: "provision"}))
}

func TestAssertTableExists(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	_, err = st.DB().Exec(`CREATE TABLE "Logs" ("Message" TEXT)`)
	require.NoError(t, err)

	actx := &AssertionContext{Store: st, Ctx: context.Background(), Schema: "main", Table: "Logs"}
	assert.NoError(t, assertTableExists(actx, Assertion{}))
	assert.Error(t, assertTableExists(actx, Assertion{Table: "Other"}))
}

func TestEvaluateAssertions_CollectsAll(t *testing.T) {
	r := resultWithRows()
	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertRowCount, Count: 1},
		{Type: AssertConstructFails},
		{Type: AssertRowCount, Count: 0},
	}, nil)

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "assertion 0 (row_count)")
	assert.Contains(t, errs[1], "assertion 1 (construct_fails)")
}

func TestAssertionError_Message(t *testing.T) {
	err := &AssertionError{Type: "row_count", Expected: "1 rows", Actual: "0 rows"}
	assert.Equal(t, "Assertion failed: row_count\n  Expected: 1 rows\n  Actual: 0 rows\n", err.Error())
}
