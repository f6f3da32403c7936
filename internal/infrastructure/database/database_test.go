package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/tasks/internal/domain/entities"
	"github.com/taskmaster/tasks/internal/infrastructure/config"
	"github.com/taskmaster/tasks/internal/infrastructure/logger"
)

func openDB(t *testing.T, path string, syncWrites bool) *DB {
	t.Helper()
	db, err := New(config.DatabaseConfig{Path: path, SyncWrites: syncWrites}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setupDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	return openDB(t, path, false), path
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(config.DatabaseConfig{}, logger.NewNop())
	assert.Error(t, err)
}

func TestNew_MissingFileIsCreated(t *testing.T) {
	db, path := setupDB(t)
	require.NoError(t, db.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
	assert.Empty(t, db.Select(entities.TasksTable))
}

func TestNew_UnparseableFileIsReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	db := openDB(t, path, false)
	require.NoError(t, db.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestNew_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "db.json")
	db := openDB(t, path, false)
	require.NoError(t, db.Flush())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestSelect_UnknownTableIsEmpty(t *testing.T) {
	db, _ := setupDB(t)

	rows := db.Select("nope")
	assert.NotNil(t, rows)
	assert.Len(t, rows, 0)
}

func TestSelect_PreservesInsertionOrder(t *testing.T) {
	db, _ := setupDB(t)

	for _, id := range []string{"c", "a", "b"} {
		db.Insert("tasks", entities.Record{"id": id})
	}

	var ids []string
	for _, r := range db.Select("tasks") {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestSelect_ReturnsCopies(t *testing.T) {
	db, _ := setupDB(t)
	db.Insert("tasks", entities.Record{"id": "a", "title": "T"})

	rows := db.Select("tasks")
	rows[0]["title"] = "mutated"

	got, ok := db.FindByID("tasks", "a")
	require.True(t, ok)
	assert.Equal(t, "T", got["title"])
}

func TestInsert_RoundTrip(t *testing.T) {
	db, _ := setupDB(t)

	r := entities.Record{
		"id":           "a",
		"title":        "T",
		"description":  "D",
		"completed_at": nil,
		"created_at":   int64(1700000000000),
	}
	inserted := db.Insert("tasks", r)
	assert.Equal(t, r, inserted)

	got, ok := db.FindByID("tasks", "a")
	require.True(t, ok)
	assert.Equal(t, r, got)
}

func TestInsert_CreatesTable(t *testing.T) {
	db, _ := setupDB(t)

	db.Insert("notes", entities.Record{"id": "n1"})
	assert.Len(t, db.Select("notes"), 1)
	assert.Equal(t, 1, db.Stats().Tables)
}

func TestInsert_DuplicateIDsFirstMatchWins(t *testing.T) {
	db, _ := setupDB(t)

	db.Insert("tasks", entities.Record{"id": "dup", "title": "first"})
	db.Insert("tasks", entities.Record{"id": "dup", "title": "second"})

	assert.Len(t, db.Select("tasks"), 2)

	got, ok := db.FindByID("tasks", "dup")
	require.True(t, ok)
	assert.Equal(t, "first", got["title"])
}

func TestFindByID_Absent(t *testing.T) {
	db, _ := setupDB(t)

	_, ok := db.FindByID("tasks", "a")
	assert.False(t, ok, "unknown table")

	db.Insert("tasks", entities.Record{"id": "b"})
	_, ok = db.FindByID("tasks", "a")
	assert.False(t, ok, "unknown id")
}

func TestFindByID_IgnoresNonStringIDs(t *testing.T) {
	db, _ := setupDB(t)
	db.Insert("tasks", entities.Record{"id": 1})

	_, ok := db.FindByID("tasks", "1")
	assert.False(t, ok)
}

func TestUpdate_ReplacesRecord(t *testing.T) {
	db, _ := setupDB(t)
	db.Insert("tasks", entities.Record{"id": "a", "title": "T", "description": "D", "completed_at": nil})

	updated, ok := db.Update("tasks", "a", entities.Record{"title": "T2"})
	require.True(t, ok)
	assert.Equal(t, entities.Record{"id": "a", "title": "T2"}, updated)

	got, ok := db.FindByID("tasks", "a")
	require.True(t, ok)
	assert.Equal(t, entities.Record{"id": "a", "title": "T2"}, got)
}

func TestUpdate_KeyIDWins(t *testing.T) {
	db, _ := setupDB(t)
	db.Insert("tasks", entities.Record{"id": "a", "title": "T"})

	updated, ok := db.Update("tasks", "a", entities.Record{"id": "other", "title": "T2"})
	require.True(t, ok)
	assert.Equal(t, "a", updated.ID())

	_, ok = db.FindByID("tasks", "other")
	assert.False(t, ok)
}

func TestUpdate_DoesNotAliasCallerFields(t *testing.T) {
	db, _ := setupDB(t)
	db.Insert("tasks", entities.Record{"id": "a"})

	fields := entities.Record{"title": "T2"}
	_, ok := db.Update("tasks", "a", fields)
	require.True(t, ok)
	fields["title"] = "changed later"

	got, _ := db.FindByID("tasks", "a")
	assert.Equal(t, "T2", got["title"])
	assert.NotContains(t, fields, "id")
}

func TestUpdate_Absent(t *testing.T) {
	db, _ := setupDB(t)

	_, ok := db.Update("tasks", "a", entities.Record{"title": "x"})
	assert.False(t, ok)
	assert.Empty(t, db.Select("tasks"))
}

func TestDelete(t *testing.T) {
	db, _ := setupDB(t)
	db.Insert("tasks", entities.Record{"id": "a"})
	db.Insert("tasks", entities.Record{"id": "b"})
	db.Insert("tasks", entities.Record{"id": "c"})

	removed, ok := db.Delete("tasks", "b")
	require.True(t, ok)
	assert.Equal(t, entities.Record{"id": "b"}, removed)

	rows := db.Select("tasks")
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].ID())
	assert.Equal(t, "c", rows[1].ID())
}

func TestDelete_AbsentLeavesTableUnchanged(t *testing.T) {
	db, _ := setupDB(t)
	db.Insert("tasks", entities.Record{"id": "a"})
	before := db.Select("tasks")

	removed, ok := db.Delete("tasks", "missing")
	assert.False(t, ok)
	assert.Nil(t, removed)
	assert.Equal(t, before, db.Select("tasks"))

	_, ok = db.Delete("nope", "missing")
	assert.False(t, ok)
}

func TestPersist_GoldenDocument(t *testing.T) {
	db, path := setupDB(t)

	db.Insert("tasks", entities.Record{"id": "a", "title": "T", "completed_at": nil, "created_at": int64(1)})
	db.Insert("notes", entities.Record{"id": "n1", "text": "hello"})
	require.NoError(t, db.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "store_document", data)
}

func TestPersist_ReloadRestoresTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")

	db := openDB(t, path, false)
	db.Insert("tasks", entities.Record{"id": "a", "title": "T", "created_at": int64(42), "completed_at": nil})
	db.Insert("tasks", entities.Record{"id": "b", "title": "U", "created_at": int64(43), "completed_at": nil})
	db.Delete("tasks", "a")
	require.NoError(t, db.Close())

	reopened := openDB(t, path, false)
	rows := reopened.Select("tasks")
	require.Len(t, rows, 1)
	assert.Equal(t, entities.Record{
		"id":           "b",
		"title":        "U",
		"created_at":   float64(43),
		"completed_at": nil,
	}, rows[0])
}

func TestPersist_SyncWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	db := openDB(t, path, true)

	db.Insert("tasks", entities.Record{"id": "a"})

	// No Flush: synchronous mode has already written the record.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id": "a"`)
}

func TestPersist_WriteFailureIsReported(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	db := openDB(t, filepath.Join(dir, "db.json"), false)
	require.NoError(t, db.Flush())
	require.NoError(t, db.HealthCheck())

	require.NoError(t, os.RemoveAll(dir))

	inserted := db.Insert("tasks", entities.Record{"id": "a"})
	assert.Equal(t, "a", inserted.ID(), "insert succeeds in memory")

	assert.Error(t, db.Flush())
	assert.Error(t, db.HealthCheck())
	assert.Equal(t, uint64(1), db.Stats().WriteFailures)

	_, ok := db.FindByID("tasks", "a")
	assert.True(t, ok)
}

func TestConcurrentInserts(t *testing.T) {
	db, path := setupDB(t)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db.Insert("tasks", entities.Record{"id": fmt.Sprintf("t%d", i)})
		}(i)
	}
	wg.Wait()
	require.NoError(t, db.Flush())

	assert.Len(t, db.Select("tasks"), n)

	reopened := openDB(t, path, false)
	assert.Len(t, reopened.Select("tasks"), n)
}

func TestStats(t *testing.T) {
	db, _ := setupDB(t)
	db.Insert("tasks", entities.Record{"id": "a"})
	db.Insert("tasks", entities.Record{"id": "b"})
	db.Insert("notes", entities.Record{"id": "n"})
	require.NoError(t, db.Flush())

	stats := db.Stats()
	assert.Equal(t, 2, stats.Tables)
	assert.Equal(t, 3, stats.Records)
	assert.GreaterOrEqual(t, stats.Writes, uint64(1))
	assert.Zero(t, stats.WriteFailures)
	assert.False(t, stats.LastWrite.IsZero())

	info := db.GetConnectionInfo()
	assert.Equal(t, 3, info["records"])
	assert.Contains(t, info, "last_write")
}

func TestClose(t *testing.T) {
	db, path := setupDB(t)
	db.Insert("tasks", entities.Record{"id": "a"})

	require.NoError(t, db.Close())
	require.NoError(t, db.Close(), "close is idempotent")
	assert.Error(t, db.Ping())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id": "a"`)

	// Flush after close does not block.
	assert.NoError(t, db.Flush())
}
