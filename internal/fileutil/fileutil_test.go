package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "common.xsd")
	require.NoError(t, os.WriteFile(path, []byte("old"), ReadableByAll))

	require.NoError(t, WriteFileAtomic(path, []byte("new"), ReadableByAll))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestWriteFileAtomic_CreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "common", "a.xsd")
	require.NoError(t, WriteFileAtomic(path, []byte("x"), ReadableByAll))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestWriteFileAtomic_ParentIsFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "common")
	require.NoError(t, os.WriteFile(blocker, nil, ReadableByAll))

	err := WriteFileAtomic(filepath.Join(blocker, "a.xsd"), []byte("x"), ReadableByAll)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fileutil: create directory")
}

func TestWriteFileOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.xsd.orig")

	written, err := WriteFileOnce(path, []byte("first"), ReadableByAll)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = WriteFileOnce(path, []byte("second"), ReadableByAll)
	require.NoError(t, err)
	assert.False(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data), "existing backup must not be overwritten")
}

func TestModeOf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.xsd")
	require.NoError(t, os.WriteFile(path, []byte("x"), OwnerReadWrite))

	assert.Equal(t, OwnerReadWrite, ModeOf(path, ReadableByAll))
	assert.Equal(t, ReadableByAll, ModeOf(path+".missing", ReadableByAll))
}
