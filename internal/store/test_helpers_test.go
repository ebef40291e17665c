package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestStore opens a fresh database in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "glaze.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// pragma reads a PRAGMA value as text.
func pragma(t *testing.T, s *Store, name string) string {
	t.Helper()
	var v string
	require.NoError(t, s.db.QueryRow("PRAGMA "+name).Scan(&v))
	return v
}
