package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_KeepsExistingTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if _, err := s1.db.Exec(`CREATE TABLE "Logs" ("Message" TEXT)`); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	exists, err := s2.TableExists(context.Background(), "main", "Logs")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.Exec(`CREATE TABLE "Logs" ("Message" TEXT)`)
	require.NoError(t, err)

	// The single pooled connection keeps the in-memory database alive.
	count, err := s.CountRows(context.Background(), "main", "Logs")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestOpen_InvalidPath(t *testing.T) {
	// Try to open in non-existent directory
	path := "/nonexistent/dir/test.db"

	_, err := Open(path)
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	err := s.Close()
	if err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}

	// Second close must not panic
	_ = s.Close()
}

func TestWrap_LeavesCallerConnectionOpen(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	s, err := Wrap(db)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.NoError(t, db.Ping())
	assert.Same(t, db, s.DB())
}

func TestWrap_NilDB(t *testing.T) {
	_, err := Wrap(nil)
	assert.Error(t, err)
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}

	// Verify it's usable
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

func TestTableExists_CaseInsensitive(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	exists, err := s.TableExists(ctx, "main", "Logs")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.db.Exec(`CREATE TABLE "Logs" ("Message" TEXT)`)
	require.NoError(t, err)

	for _, name := range []string{"Logs", "logs", "LOGS"} {
		exists, err := s.TableExists(ctx, "main", name)
		require.NoError(t, err)
		assert.True(t, exists, name)
	}
}

func TestTableExists_UnknownSchema(t *testing.T) {
	s := createTestStore(t)

	_, err := s.TableExists(context.Background(), "nope", "Logs")
	assert.Error(t, err)
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)

	// FULL = 2
	if err := s.verifyPragma("synchronous", "2"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)

	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_ForeignKeys(t *testing.T) {
	s := createTestStore(t)

	// ON = 1
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

func TestReadRows_InsertionOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.db.Exec(`CREATE TABLE "Logs" ("Message" TEXT, "Level" INTEGER, "Data" BLOB)`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO "Logs" VALUES ('b', 2, x'6869'), ('a', 1, NULL)`)
	require.NoError(t, err)

	cols, rows, err := s.ReadRows(ctx, "main", "Logs")
	require.NoError(t, err)
	assert.Equal(t, []string{"Message", "Level", "Data"}, cols)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"Message": "b", "Level": int64(2), "Data": "hi"}, rows[0])
	assert.Equal(t, Row{"Message": "a", "Level": int64(1), "Data": nil}, rows[1])
}

func TestReadRows_MissingTable(t *testing.T) {
	s := createTestStore(t)

	_, _, err := s.ReadRows(context.Background(), "main", "Missing")
	assert.Error(t, err)
}
