package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditsink/internal/config"
	"github.com/roach88/auditsink/internal/logevent"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_LoginAuditGolden(t *testing.T) {
	scenario := loadTestScenario(t, "login_audit")

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_TriggersDisabled(t *testing.T) {
	result, err := Run(loadTestScenario(t, "triggers_disabled"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.False(t, result.Constructed)
	assert.Equal(t, "TRIGGERS_DISABLED", result.ConstructCode)
	assert.Empty(t, result.Emits)
	assert.Empty(t, result.Columns)
}

func TestRun_WriteFailureSurfacesPerEvent(t *testing.T) {
	result, err := Run(loadTestScenario(t, "write_failure"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Emits, 3)
	assert.Empty(t, result.Emits[0].Error)
	assert.Contains(t, result.Emits[1].Error, "errors are not accepted")
	assert.Empty(t, result.Emits[2].Error)
}

func TestRun_UnexpectedEmitFailureFailsScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing_table",
		Description: "writes without a table",
		Config:      config.File{TableName: "Logs"},
		Events:      []EventStep{{MessageTemplate: "hello"}},
		Assertions:  []Assertion{{Type: AssertRowCount, Count: 0}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "emit failed")
}

func TestRun_ExpectedFailureThatSucceeds(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected_success",
		Description: "expect_error on a good write",
		Config:      config.File{TableName: "Logs", AutoCreateTable: true},
		Events:      []EventStep{{MessageTemplate: "fine", ExpectError: true}},
		Assertions:  []Assertion{{Type: AssertRowCount, Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected emit to fail")
}

func TestRun_ExplicitTimestampAndLevel(t *testing.T) {
	level := logevent.LevelFatal
	scenario := &Scenario{
		Name:        "explicit",
		Description: "explicit timestamp and level",
		Config:      config.File{TableName: "Logs", AutoCreateTable: true},
		Events: []EventStep{{
			Timestamp:       "2023-05-06T07:08:09Z",
			Level:           &level,
			MessageTemplate: "down",
		}},
		Assertions: []Assertion{
			{Type: AssertColumnEquals, Row: 1, Column: "Level", Value: "Fatal"},
			{Type: AssertColumnEquals, Row: 1, Column: "timestamp", Value: "2023-05-06T07:08:09Z"},
			{Type: AssertColumnEquals, Row: 1, Column: "Id", Value: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_FailPolicyOnExistingTable(t *testing.T) {
	scenario := &Scenario{
		Name:        "exists",
		Description: "fail policy with an existing table",
		Config:      config.File{TableName: "Logs", AutoCreateTable: true, IfTableExists: "fail"},
		Setup:       []string{`CREATE TABLE "Logs" ("Message" TEXT)`},
		Assertions: []Assertion{
			{Type: AssertConstructFails, Contains: "table already exists"},
			{Type: AssertTableExists},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.ConstructCode)
}

func TestRun_BadSetupStatement(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_setup",
		Description: "broken SQL",
		Config:      config.File{TableName: "Logs"},
		Setup:       []string{"CREATE TABLE"},
		Assertions:  []Assertion{{Type: AssertRowCount}},
	}

	_, err := Run(scenario)
	assert.Error(t, err)
}
