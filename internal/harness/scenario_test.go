package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditsink/internal/logevent"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "login_audit.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "login_audit", s.Name)
	assert.Equal(t, "Logs", s.Config.TableName)
	assert.True(t, s.Config.AutoCreateTable)
	require.Len(t, s.Events, 2)
	require.NotNil(t, s.Events[0].Level)
	assert.Equal(t, logevent.LevelWarning, *s.Events[0].Level)
	assert.Nil(t, s.Events[1].Level)
	assert.Equal(t, "ann", s.Events[0].Properties["UserName"])
	assert.Equal(t, 12, s.Events[1].Properties["Amount"])
	assert.Equal(t, "card declined", s.Events[1].Exception)
	assert.Len(t, s.Assertions, 5)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadScenario_WritesAndReads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	content := "name: s\ndescription: d\nconfig:\n  table_name: Logs\nassertions:\n  - type: row_count\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "s", s.Name)
}

func TestParseScenario_Rejects(t *testing.T) {
	base := "name: s\ndescription: d\n"
	tests := []struct {
		name string
		doc  string
	}{
		{"missing name", "description: d\nassertions:\n  - type: row_count\n"},
		{"missing description", "name: s\nassertions:\n  - type: row_count\n"},
		{"no assertions", base},
		{"unknown field", base + "assertion:\n  - type: row_count\n"},
		{"unknown assertion", base + "assertions:\n  - type: trace_order\n"},
		{"missing type", base + "assertions:\n  - count: 1\n"},
		{"negative count", base + "assertions:\n  - type: row_count\n    count: -1\n"},
		{"row zero", base + "assertions:\n  - type: column_equals\n    column: Message\n"},
		{"no column", base + "assertions:\n  - type: column_equals\n    row: 1\n"},
		{"event out of range", base + "events:\n  - message_template: x\nassertions:\n  - type: emit_fails\n    event: 2\n"},
		{"bad timestamp", base + "events:\n  - timestamp: yesterday\nassertions:\n  - type: row_count\n"},
		{"bad level", base + "events:\n  - level: Loud\nassertions:\n  - type: row_count\n"},
		{"bad config", base + "config:\n  if_table_exists: replace\nassertions:\n  - type: row_count\n"},
		{"empty setup", base + "setup:\n  - \"\"\nassertions:\n  - type: row_count\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
