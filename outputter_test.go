package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomically(t *testing.T) {
	dir := t.TempDir()
	destination := filepath.Join(dir, "genesis.json")
	require.NoError(t, os.WriteFile(destination, []byte("old"), 0644))

	require.NoError(t, writeFileAtomically(destination, []byte("new"), 0640))

	content, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, "new", string(content))
	stat, err := os.Stat(destination)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0640), stat.Mode().Perm())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestWriteFileAtomicallyMissingDirectory(t *testing.T) {
	err := writeFileAtomically(filepath.Join(t.TempDir(), "missing", "genesis.json"), []byte("x"), 0600)
	require.Error(t, err)
}
