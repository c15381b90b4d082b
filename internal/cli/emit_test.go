package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditsink/internal/store"
)

const twoEvents = `{"timestamp":"2024-03-01T10:00:00Z","level":"Warning","messageTemplate":"User {UserName} logged in","properties":{"UserName":"ann"}}

{"timestamp":"2024-03-01T10:00:05Z","messageTemplate":"Payment {Amount} failed","properties":{"Amount":12},"exception":"card declined"}
`

func readLogs(t *testing.T, dbPath string) []store.Row {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	_, rows, err := st.ReadRows(context.Background(), "main", "Logs")
	require.NoError(t, err)
	return rows
}

func TestEmitFromFile(t *testing.T) {
	path := writeConfig(t, logsConfig)
	events := writeFile(t, "events.jsonl", twoEvents)
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	out, err := execute(t, NewEmitCommand(&RootOptions{Format: "text"}), "--db", dbPath, path, events)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Emitted 2 event(s) to main.Logs")

	rows := readLogs(t, dbPath)
	require.Len(t, rows, 2)
	assert.Equal(t, `User "ann" logged in`, rows[0]["Message"])
	assert.Equal(t, "Warning", rows[0]["Level"])
	assert.Equal(t, "Payment 12 failed", rows[1]["Message"])
	assert.Equal(t, "Information", rows[1]["Level"])
	assert.Equal(t, "card declined", rows[1]["Exception"])
}

func TestEmitFromStdinJSON(t *testing.T) {
	path := writeConfig(t, logsConfig)
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	cmd := NewEmitCommand(&RootOptions{Format: "json"})
	cmd.SetIn(strings.NewReader(twoEvents))
	out, err := execute(t, cmd, "--db", dbPath, path, "-")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), data["emitted"])
	assert.Len(t, readLogs(t, dbPath), 2)
}

func TestEmitStopsAtFirstWriteFailure(t *testing.T) {
	// No auto-create and no table: the very first write fails.
	path := writeConfig(t, "table_name: Logs\n")
	events := writeFile(t, "events.jsonl", twoEvents)
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	out, err := execute(t, NewEmitCommand(&RootOptions{Format: "text"}), "--db", dbPath, path, events)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]: emit failed at line 1 after 0 emitted")
	assert.NotContains(t, out, "✓")
}

func TestEmitStopsAtUndecodableLine(t *testing.T) {
	path := writeConfig(t, logsConfig)
	events := writeFile(t, "events.jsonl",
		`{"messageTemplate":"first"}`+"\n"+
			`{"messageTemplate":"second","batch":true}`+"\n"+
			`{"messageTemplate":"third"}`+"\n")
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	out, err := execute(t, NewEmitCommand(&RootOptions{Format: "json"}), "--db", dbPath, path, events)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInput, resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "line 2")

	// The event before the bad line stays committed; nothing after it is written.
	rows := readLogs(t, dbPath)
	require.Len(t, rows, 1)
	assert.Equal(t, "first", rows[0]["Message"])
}

func TestEmitMissingEventsFile(t *testing.T) {
	path := writeConfig(t, logsConfig)
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	out, err := execute(t, NewEmitCommand(&RootOptions{Format: "text"}), "--db", dbPath, path, filepath.Join(t.TempDir(), "none.jsonl"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestEmitArgs(t *testing.T) {
	_, err := execute(t, NewEmitCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts between 1 and 2 arg(s)")
}
