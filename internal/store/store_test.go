package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glaze.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.FileExists(t, path)
	for _, table := range []string{"kv", "solves"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "glaze.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "glaze.umf", `{"SiO2":3}`))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(ctx, "glaze.umf")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"SiO2":3}`, v)
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	last, err := s.LastSeq(context.Background())
	require.NoError(t, err)
	assert.Zero(t, last)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/glaze.db")
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)
	assert.Equal(t, "wal", pragma(t, s, "journal_mode"))
	assert.Equal(t, "5000", pragma(t, s, "busy_timeout"))
	assert.Equal(t, strconv.Itoa(schemaVersion()), pragma(t, s, "user_version"))
}

func TestMigrations_UpgradeUnversionedDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glaze.db")

	// A database written before migrations existed: base tables only.
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(schemaSQL)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, strconv.Itoa(schemaVersion()), pragma(t, s, "user_version"))
	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name='idx_solves_request_token'").Scan(&name)
	assert.NoError(t, err)
}
